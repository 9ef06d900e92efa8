package indicator

// Regression is an ordinary least squares line fitted over (index, value) pairs
type Regression struct {
	Slope     float64
	Intercept float64
	Fitted    []float64 // one per input value
	Next      float64   // value one step beyond the last input
	Forward   []float64 // further projections after Next
}

// Empty reports whether the fit was degenerate (fewer than two points)
func (r Regression) Empty() bool {
	return len(r.Fitted) == 0
}

// At evaluates the fitted line at x
func (r Regression) At(x float64) float64 {
	return r.Intercept + r.Slope*x
}

// Line returns fitted values followed by Next and Forward
func (r Regression) Line() []float64 {
	if r.Empty() {
		return []float64{}
	}
	line := make([]float64, 0, len(r.Fitted)+1+len(r.Forward))
	line = append(line, r.Fitted...)
	line = append(line, r.Next)
	return append(line, r.Forward...)
}

// LinearRegression fits values[i] against x = i and projects the line
// forward steps past Next, each step apart.
// Returns a zero Regression when len(values) <= 1.
func LinearRegression(values []float64, forward int, step float64) Regression {
	n := len(values)
	if n <= 1 {
		return Regression{}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	fn := float64(n)
	slope := (fn*sumXY - sumX*sumY) / (fn*sumXX - sumX*sumX)
	r := Regression{
		Slope:     slope,
		Intercept: (sumY - slope*sumX) / fn,
	}

	r.Fitted = make([]float64, n)
	for i := range values {
		r.Fitted[i] = r.At(float64(i))
	}

	last := fn - 1
	r.Next = r.At(last + step)
	if forward > 0 {
		r.Forward = make([]float64, forward)
		for k := range r.Forward {
			r.Forward[k] = r.At(last + step*float64(k+2))
		}
	}

	return r
}
