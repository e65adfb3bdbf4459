// Package regression fits linear, ridge, lasso and polynomial models over
// row-wise-complete data and reports model and residual diagnostics.
package regression

import (
	"fmt"
	"math"
	"strings"

	"github.com/quantify-ai/quantify-go/internal/numeric"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

// Model type names accepted in requests.
const (
	TypeLinear     = "linear"
	TypeRidge      = "ridge"
	TypeLasso      = "lasso"
	TypePolynomial = "polynomial"
)

// Fixed penalty strengths, matching the service's established defaults.
const (
	RidgeAlpha = 1.0
	LassoAlpha = 0.1
)

const minSampleSize = 10

// Request is a fully materialized fit request: columns are row-aligned and
// already row-wise complete.
type Request struct {
	DependentVar     string
	IndependentVars  []string
	Y                []float64
	X                [][]float64 // column-major, aligned with IndependentVars
	Type             string
	PolynomialDegree int
}

// Inference is the per-coefficient diagnostics block, produced only by the
// ordinary least squares model. TValue and PValue are null when the fit has
// zero residual variance and the t statistic is undefined.
type Inference struct {
	Coefficient float64  `json:"coefficient"`
	StdError    float64  `json:"std_error"`
	TValue      *float64 `json:"t_value"`
	PValue      *float64 `json:"p_value"`
	Significant bool     `json:"significant"`
}

type ModelStats struct {
	RSquared         float64  `json:"r_squared"`
	AdjustedRSquared *float64 `json:"adjusted_r_squared,omitempty"`
	MSE              float64  `json:"mse"`
	FStatistic       *float64 `json:"f_statistic,omitempty"`
	FPValue          *float64 `json:"f_pvalue,omitempty"`
	AIC              *float64 `json:"aic,omitempty"`
	BIC              *float64 `json:"bic,omitempty"`
	Alpha            *float64 `json:"alpha,omitempty"`
}

type ResidualStats struct {
	DurbinWatson     float64 `json:"durbin_watson"`
	JarqueBera       float64 `json:"jarque_bera"`
	JarqueBeraPValue float64 `json:"jarque_bera_pvalue"`
}

// ChartData pairs the first independent variable with actual and predicted
// dependent values for scatter charting.
type ChartData struct {
	Actual    [][2]float64 `json:"actual"`
	Predicted [][2]float64 `json:"predicted"`
}

type Result struct {
	RegressionType   string               `json:"regression_type"`
	DependentVar     string               `json:"dependent_var"`
	IndependentVars  []string             `json:"independent_vars"`
	SampleSize       int                  `json:"sample_size"`
	Formula          string               `json:"formula"`
	Intercept        float64              `json:"intercept"`
	PolynomialDegree int                  `json:"polynomial_degree,omitempty"`
	Coefficients     map[string]float64   `json:"coefficients"`
	Inference        map[string]Inference `json:"inference,omitempty"`
	ModelStats       ModelStats           `json:"model_stats"`
	ResidualStats    *ResidualStats       `json:"residual_stats,omitempty"`
	ChartData        ChartData            `json:"chart_data"`
}

// Fit dispatches to the requested model kind. All kinds share the same
// fit(X, y) contract; linear additionally produces the inference block.
func Fit(req Request) (*Result, error) {
	n := len(req.Y)
	if n < minSampleSize {
		return nil, validation.Errorf("at least %d usable rows are required, got %d", minSampleSize, n)
	}
	if len(req.X) == 0 {
		return nil, validation.Errorf("at least 1 independent variable is required")
	}
	for i, col := range req.X {
		if len(col) != n {
			return nil, fmt.Errorf("column %d has %d rows, want %d", i, len(col), n)
		}
	}

	switch req.Type {
	case TypeLinear:
		return fitLinear(req)
	case TypeRidge:
		return fitRidge(req)
	case TypeLasso:
		return fitLasso(req)
	case TypePolynomial:
		return fitPolynomial(req)
	default:
		return nil, validation.Errorf("unsupported regression type: %s", req.Type)
	}
}

// equation renders the fitted model as a human-readable string, terms in
// input order.
func equation(dep string, intercept float64, names []string, coefs []float64) string {
	parts := []string{fmt.Sprintf("%s = %.4f", dep, numeric.Round(intercept, 4))}
	for i, name := range names {
		c := numeric.Round(coefs[i], 4)
		if c >= 0 {
			parts = append(parts, fmt.Sprintf("+ %.4f * %s", c, name))
		} else {
			parts = append(parts, fmt.Sprintf("- %.4f * %s", math.Abs(c), name))
		}
	}
	return strings.Join(parts, " ")
}

func chartData(x1, y, predicted []float64) ChartData {
	chart := ChartData{
		Actual:    make([][2]float64, len(y)),
		Predicted: make([][2]float64, len(y)),
	}
	for i := range y {
		chart.Actual[i] = [2]float64{x1[i], y[i]}
		chart.Predicted[i] = [2]float64{x1[i], predicted[i]}
	}
	return chart
}

// rSquaredMSE computes R-squared and mean squared error of predictions.
func rSquaredMSE(y, predicted []float64) (r2, mse float64) {
	n := float64(len(y))
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= n

	var rss, tss float64
	for i := range y {
		e := y[i] - predicted[i]
		rss += e * e
		d := y[i] - mean
		tss += d * d
	}
	mse = rss / n
	if tss == 0 {
		return 0, mse
	}
	return 1 - rss/tss, mse
}

func roundCoefMap(names []string, coefs []float64) map[string]float64 {
	out := make(map[string]float64, len(names))
	for i, name := range names {
		out[name] = numeric.Round(coefs[i], 4)
	}
	return out
}

func ptr(v float64) *float64 { return &v }
