package regression

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/quantify-ai/quantify-go/internal/numeric"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

// center subtracts column means, returning centered copies and the means.
// Regularized models leave the intercept unpenalized, which is equivalent to
// fitting on centered data and recovering the intercept from the means.
func center(cols [][]float64, y []float64) (xc [][]float64, yc []float64, xMeans []float64, yMean float64) {
	n := len(y)
	xc = make([][]float64, len(cols))
	xMeans = make([]float64, len(cols))
	for j, col := range cols {
		m := 0.0
		for _, v := range col {
			m += v
		}
		m /= float64(n)
		xMeans[j] = m
		cc := make([]float64, n)
		for i, v := range col {
			cc[i] = v - m
		}
		xc[j] = cc
	}
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)
	yc = make([]float64, n)
	for i, v := range y {
		yc[i] = v - yMean
	}
	return xc, yc, xMeans, yMean
}

func predictLinear(cols [][]float64, intercept float64, coefs []float64) []float64 {
	n := len(cols[0])
	predicted := make([]float64, n)
	for i := 0; i < n; i++ {
		v := intercept
		for j, col := range cols {
			v += coefs[j] * col[i]
		}
		predicted[i] = v
	}
	return predicted
}

func fitRidge(req Request) (*Result, error) {
	n := len(req.Y)
	p := len(req.X)
	xc, yc, xMeans, yMean := center(req.X, req.Y)

	// Solve (Xc'Xc + alpha*I) beta = Xc'yc.
	a := mat.NewSymDense(p, nil)
	b := make([]float64, p)
	for j := 0; j < p; j++ {
		for k := j; k < p; k++ {
			dot := 0.0
			for i := 0; i < n; i++ {
				dot += xc[j][i] * xc[k][i]
			}
			if j == k {
				dot += RidgeAlpha
			}
			a.SetSym(j, k, dot)
		}
		for i := 0; i < n; i++ {
			b[j] += xc[j][i] * yc[i]
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(a) {
		return nil, validation.Errorf("ridge system is not positive definite; check input variables")
	}
	coefVec := mat.NewVecDense(p, nil)
	if err := chol.SolveVecTo(coefVec, mat.NewVecDense(p, b)); err != nil {
		return nil, validation.Errorf("ridge solve failed: %v", err)
	}

	coefs := make([]float64, p)
	intercept := yMean
	for j := 0; j < p; j++ {
		coefs[j] = coefVec.AtVec(j)
		intercept -= coefs[j] * xMeans[j]
	}

	predicted := predictLinear(req.X, intercept, coefs)
	r2, mse := rSquaredMSE(req.Y, predicted)

	return &Result{
		RegressionType:  "Ridge Regression",
		DependentVar:    req.DependentVar,
		IndependentVars: req.IndependentVars,
		SampleSize:      n,
		Formula:         equation(req.DependentVar, intercept, req.IndependentVars, coefs),
		Intercept:       numeric.Round(intercept, 4),
		Coefficients:    roundCoefMap(req.IndependentVars, coefs),
		ModelStats: ModelStats{
			RSquared: numeric.Round(r2, 4),
			MSE:      numeric.Round(mse, 4),
			Alpha:    ptr(RidgeAlpha),
		},
		ChartData: chartData(req.X[0], req.Y, predicted),
	}, nil
}

const (
	lassoMaxIter = 1000
	lassoTol     = 1e-7
)

// fitLasso minimizes (1/(2n))*RSS + alpha*||beta||_1 by cyclic coordinate
// descent on centered data.
func fitLasso(req Request) (*Result, error) {
	n := len(req.Y)
	p := len(req.X)
	xc, yc, xMeans, yMean := center(req.X, req.Y)

	norms := make([]float64, p) // (1/n) * x_j'x_j
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			norms[j] += xc[j][i] * xc[j][i]
		}
		norms[j] /= float64(n)
		if norms[j] == 0 {
			return nil, validation.Errorf("variable '%s' has zero variance", req.IndependentVars[j])
		}
	}

	coefs := make([]float64, p)
	residual := append([]float64(nil), yc...)

	for iter := 0; iter < lassoMaxIter; iter++ {
		maxDelta := 0.0
		for j := 0; j < p; j++ {
			// rho_j = (1/n) x_j' (r + x_j*beta_j)
			rho := 0.0
			for i := 0; i < n; i++ {
				rho += xc[j][i] * (residual[i] + xc[j][i]*coefs[j])
			}
			rho /= float64(n)

			next := softThreshold(rho, LassoAlpha) / norms[j]
			delta := next - coefs[j]
			if delta != 0 {
				for i := 0; i < n; i++ {
					residual[i] -= xc[j][i] * delta
				}
				coefs[j] = next
			}
			if math.Abs(delta) > maxDelta {
				maxDelta = math.Abs(delta)
			}
		}
		if maxDelta < lassoTol {
			break
		}
	}

	intercept := yMean
	for j := 0; j < p; j++ {
		intercept -= coefs[j] * xMeans[j]
	}

	predicted := predictLinear(req.X, intercept, coefs)
	r2, mse := rSquaredMSE(req.Y, predicted)

	return &Result{
		RegressionType:  "Lasso Regression",
		DependentVar:    req.DependentVar,
		IndependentVars: req.IndependentVars,
		SampleSize:      n,
		Formula:         equation(req.DependentVar, intercept, req.IndependentVars, coefs),
		Intercept:       numeric.Round(intercept, 4),
		Coefficients:    roundCoefMap(req.IndependentVars, coefs),
		ModelStats: ModelStats{
			RSquared: numeric.Round(r2, 4),
			MSE:      numeric.Round(mse, 4),
			Alpha:    ptr(LassoAlpha),
		},
		ChartData: chartData(req.X[0], req.Y, predicted),
	}, nil
}

func softThreshold(v, threshold float64) float64 {
	switch {
	case v > threshold:
		return v - threshold
	case v < -threshold:
		return v + threshold
	default:
		return 0
	}
}
