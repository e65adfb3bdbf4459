package regression

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/quantify-ai/quantify-go/internal/numeric"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

// olsSolve fits ordinary least squares with an intercept column. beta[0] is
// the intercept, beta[1:] follow the column order of cols.
func olsSolve(cols [][]float64, y []float64) (beta []float64, predicted []float64, err error) {
	n := len(y)
	p := len(cols)

	design := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		for j, col := range cols {
			design.Set(i, j+1, col[i])
		}
	}

	yVec := mat.NewDense(n, 1, append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(design)
	var betaMat mat.Dense
	if err := qr.SolveTo(&betaMat, false, yVec); err != nil {
		return nil, nil, validation.Errorf("design matrix is singular; check for collinear variables")
	}

	beta = make([]float64, p+1)
	for j := range beta {
		beta[j] = betaMat.At(j, 0)
	}

	predicted = make([]float64, n)
	for i := 0; i < n; i++ {
		v := beta[0]
		for j, col := range cols {
			v += beta[j+1] * col[i]
		}
		predicted[i] = v
	}
	return beta, predicted, nil
}

func fitLinear(req Request) (*Result, error) {
	n := len(req.Y)
	p := len(req.X)
	if n <= p+1 {
		return nil, validation.Errorf("need more rows than variables: %d rows for %d variables", n, p)
	}

	beta, predicted, err := olsSolve(req.X, req.Y)
	if err != nil {
		return nil, err
	}

	var yMean float64
	for _, v := range req.Y {
		yMean += v
	}
	yMean /= float64(n)

	residuals := make([]float64, n)
	var rss, tss float64
	for i := range req.Y {
		residuals[i] = req.Y[i] - predicted[i]
		rss += residuals[i] * residuals[i]
		d := req.Y[i] - yMean
		tss += d * d
	}

	dof := float64(n - p - 1)
	sigma2 := rss / dof

	// Covariance of the estimates: sigma^2 (X'X)^-1.
	design := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		for j, col := range req.X {
			design.Set(i, j+1, col[i])
		}
	}
	var xtx mat.Dense
	xtx.Mul(design.T(), design)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, validation.Errorf("design matrix is singular; check for collinear variables")
	}

	// Residuals at machine precision relative to the total variation mean an
	// exact fit: the t statistics, the F statistic and the Gaussian
	// information criteria are undefined there and stay null. They must
	// never surface as +/-Inf, which would not survive JSON encoding.
	exactFit := tss == 0 || rss <= tss*1e-12

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	inference := make(map[string]Inference, p)
	for j, name := range req.IndependentVars {
		se := math.Sqrt(sigma2 * xtxInv.At(j+1, j+1))
		inf := Inference{
			Coefficient: numeric.Round(beta[j+1], 4),
			StdError:    numeric.Round(se, 4),
		}
		if !exactFit && se > 0 {
			tVal := beta[j+1] / se
			pVal := 2 * (1 - tDist.CDF(math.Abs(tVal)))
			inf.TValue = ptr(numeric.Round(tVal, 4))
			inf.PValue = ptr(numeric.Round(pVal, 4))
			inf.Significant = pVal < 0.05
		} else {
			inf.Significant = beta[j+1] != 0
		}
		inference[name] = inf
	}

	r2, mse := rSquaredMSE(req.Y, predicted)
	adjR2 := 1 - (1-r2)*float64(n-1)/dof

	stats := ModelStats{
		RSquared:         numeric.Round(r2, 4),
		AdjustedRSquared: ptr(numeric.Round(adjR2, 4)),
		MSE:              numeric.Round(mse, 4),
	}

	// Overall F test against the intercept-only model, computed from the
	// sums of squares.
	if !exactFit {
		fStat := ((tss - rss) / float64(p)) / (rss / dof)
		fDist := distuv.F{D1: float64(p), D2: dof}
		stats.FStatistic = ptr(numeric.Round(fStat, 4))
		stats.FPValue = ptr(numeric.Round(1-fDist.CDF(fStat), 4))

		ll := -float64(n) / 2 * (math.Log(2*math.Pi) + math.Log(rss/float64(n)) + 1)
		k := float64(p + 1)
		stats.AIC = ptr(numeric.Round(-2*ll+2*k, 4))
		stats.BIC = ptr(numeric.Round(-2*ll+k*math.Log(float64(n)), 4))
	}

	jbStat, jbP, jbErr := numeric.JarqueBera(residuals)
	residualStats := &ResidualStats{
		DurbinWatson: numeric.Round(durbinWatson(residuals), 4),
	}
	if jbErr == nil {
		residualStats.JarqueBera = numeric.Round(jbStat, 4)
		residualStats.JarqueBeraPValue = numeric.Round(jbP, 4)
	}

	return &Result{
		RegressionType:  "Linear Regression",
		DependentVar:    req.DependentVar,
		IndependentVars: req.IndependentVars,
		SampleSize:      n,
		Formula:         equation(req.DependentVar, beta[0], req.IndependentVars, beta[1:]),
		Intercept:       numeric.Round(beta[0], 4),
		Coefficients:    roundCoefMap(req.IndependentVars, beta[1:]),
		Inference:       inference,
		ModelStats:      stats,
		ResidualStats:   residualStats,
		ChartData:       chartData(req.X[0], req.Y, predicted),
	}, nil
}

// durbinWatson measures first-order autocorrelation of residuals.
func durbinWatson(residuals []float64) float64 {
	var num, den float64
	for i, e := range residuals {
		den += e * e
		if i > 0 {
			d := e - residuals[i-1]
			num += d * d
		}
	}
	if den == 0 {
		return 0
	}
	return num / den
}
