package solver

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

// Func — интерфейс для абстрактной функции f(x)
type Func interface {
	Eval(x float64) (float64, error)
}

// evalFunc — реализация Func на основе govaluate
type evalFunc struct {
	expr *govaluate.EvaluableExpression
}

// NewEvalFunc создаёт вычислимую функцию по строке f(x)
func NewEvalFunc(expr string) (Func, error) {
	funcs := map[string]govaluate.ExpressionFunction{
		"sin": func(args ...interface{}) (interface{}, error) { return math.Sin(toFloat(args[0])), nil },
		"cos": func(args ...interface{}) (interface{}, error) { return math.Cos(toFloat(args[0])), nil },
		"tan": func(args ...interface{}) (interface{}, error) { return math.Tan(toFloat(args[0])), nil },
		"exp": func(args ...interface{}) (interface{}, error) { return math.Exp(toFloat(args[0])), nil },
		"log": func(args ...interface{}) (interface{}, error) { return math.Log(toFloat(args[0])), nil },
		"ln":  func(args ...interface{}) (interface{}, error) { return math.Log(toFloat(args[0])), nil },
		"log10": func(args ...interface{}) (interface{}, error) {
			return math.Log10(toFloat(args[0])), nil
		},
		"sqrt": func(args ...interface{}) (interface{}, error) {
			return math.Sqrt(toFloat(args[0])), nil
		},
		"abs": func(args ...interface{}) (interface{}, error) {
			return math.Abs(toFloat(args[0])), nil
		},
		"pow": func(args ...interface{}) (interface{}, error) {
			return math.Pow(toFloat(args[0]), toFloat(args[1])), nil
		},
	}

	// govaluate понимает возведение в степень только как **, а ^ считает XOR
	expr = strings.ReplaceAll(expr, "^", "**")

	parsed, err := govaluate.NewEvaluableExpressionWithFunctions(expr, funcs)
	if err != nil {
		return nil, err
	}

	// единственная допустимая переменная — x
	for _, v := range parsed.Vars() {
		if v != "x" {
			return nil, fmt.Errorf("неизвестная переменная %q, ожидается x", v)
		}
	}

	return &evalFunc{expr: parsed}, nil
}

// Eval безопасен для конкурентных вызовов: параметры создаются на каждый вызов
func (f *evalFunc) Eval(x float64) (float64, error) {
	v, err := f.expr.Evaluate(map[string]interface{}{"x": x})
	if err != nil {
		return math.NaN(), err
	}

	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return math.NaN(), err
		}
		return parsed, nil
	default:
		return math.NaN(), fmt.Errorf("выражение не вернуло число: %T", v)
	}
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return math.NaN()
	}
}

// Sample вычисляет f на равномерной сетке из n точек отрезка [from, to].
// Ошибки вычисления и бесконечности превращаются в NaN — таблица значений
// и график просто пропускают такие точки.
func Sample(f Func, from, to float64, n int) (xs, ys []float64) {
	if n < 2 {
		n = 2
	}
	xs = make([]float64, n)
	ys = make([]float64, n)
	h := (to - from) / float64(n-1)
	for i := 0; i < n; i++ {
		x := from + float64(i)*h
		y, err := f.Eval(x)
		if err != nil || math.IsNaN(y) || math.IsInf(y, 0) {
			y = math.NaN()
		}
		xs[i], ys[i] = x, y
	}
	return xs, ys
}
