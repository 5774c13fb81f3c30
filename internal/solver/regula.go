package solver

import (
	"errors"
	"fmt"
	"math"
)

// DefaultMaxIter — предел итераций по умолчанию
const DefaultMaxIter = 20

// параметры автоматического поиска интервала со сменой знака
const (
	searchStep     = 2.0
	searchAttempts = 50
)

// Iter — одна итерация метода ложного положения
type Iter struct {
	K      int     `json:"k"`
	A      float64 `json:"a"`
	B      float64 `json:"b"`
	FA     float64 `json:"fa"`
	FB     float64 `json:"fb"`
	Z      float64 `json:"z"`
	FZ     float64 `json:"fz"`
	Sign   string  `json:"sign"`
	RelErr float64 `json:"relErr"`
}

// Result — итог вычисления
type Result struct {
	Z         float64 `json:"z"`
	FZ        float64 `json:"fz"`
	Iters     int     `json:"iters"`
	Converged bool    `json:"converged"`
}

// ErrStopped — специальная ошибка для принудительной остановки
var ErrStopped = errors.New("regula: stopped by callback")

// ErrDegenerate — значения функции на концах интервала совпали,
// формула интерполяции не определена
var ErrDegenerate = errors.New("regula: f(a) = f(b), интерполяция невозможна")

// NoBracketError — поиск интервала со сменой знака исчерпал лимит попыток
type NoBracketError struct {
	A, B     float64 // самый широкий проверенный интервал
	Attempts int
}

func (e *NoBracketError) Error() string {
	return fmt.Sprintf("regula: смена знака не найдена за %d расширений, последний интервал [%g, %g]",
		e.Attempts, e.A, e.B)
}

// SearchBracket проверяет условие f(a)*f(b) < 0 и, если оно нарушено,
// симметрично расширяет интервал шагом 2.0 в обе стороны, до 50 попыток.
// Возвращает найденный интервал и число сделанных расширений.
// Найденный интервал может оказаться много шире исходного — вызывающая
// сторона должна показать его пользователю.
func SearchBracket(f Func, a, b float64) (float64, float64, int, error) {
	fa, err := eval(f, a)
	if err != nil {
		return a, b, 0, err
	}
	fb, err := eval(f, b)
	if err != nil {
		return a, b, 0, err
	}

	attempts := 0
	for fa*fb >= 0 {
		if attempts >= searchAttempts {
			return a, b, attempts, &NoBracketError{A: a, B: b, Attempts: attempts}
		}
		a -= searchStep
		b += searchStep
		attempts++

		if fa, err = eval(f, a); err != nil {
			return a, b, attempts, err
		}
		if fb, err = eval(f, b); err != nil {
			return a, b, attempts, err
		}
	}

	return a, b, attempts, nil
}

// RegulaFalsi — итерационный цикл метода ложного положения.
// Интервал [a, b] должен уже содержать смену знака (см. SearchBracket и Solve).
// onIter вызывается после каждой итерации; если вернёт ErrStopped — алгоритм прерывается.
// Если лимит итераций исчерпан до достижения точности, возвращается последняя
// оценка с Converged=false, без ошибки.
func RegulaFalsi(f Func, a, b, eps float64, maxIter int, onIter func(Iter) error) ([]Iter, Result, error) {
	if eps <= 0 {
		return nil, Result{}, errors.New("regula: требуется eps > 0")
	}
	if a == b {
		return nil, Result{}, errors.New("regula: требуется a != b")
	}
	if maxIter < 1 {
		maxIter = DefaultMaxIter
	}

	var (
		iters []Iter
		last  Iter
		zPrev float64
	)

	for k := 1; k <= maxIter; k++ {
		fa, err := eval(f, a)
		if err != nil {
			return iters, Result{}, err
		}
		fb, err := eval(f, b)
		if err != nil {
			return iters, Result{}, err
		}
		if fb == fa {
			return iters, Result{}, ErrDegenerate
		}

		z := (a*fb - b*fa) / (fb - fa)
		fz, err := eval(f, z)
		if err != nil {
			return iters, Result{}, err
		}

		// относительная погрешность в процентах; на первой итерации
		// сравнивать не с чем, при z = 0 формула не определена
		relErr := 100.0
		if k > 1 && z != 0 {
			relErr = math.Abs((z-zPrev)/z) * 100
		}

		sign := "Negative"
		if fz > 0 {
			sign = "Positive"
		}

		last = Iter{K: k, A: a, B: b, FA: fa, FB: fb, Z: z, FZ: fz, Sign: sign, RelErr: relErr}
		iters = append(iters, last)

		if onIter != nil {
			if err := onIter(last); err != nil {
				if errors.Is(err, ErrStopped) {
					return iters, Result{Z: z, FZ: fz, Iters: k}, ErrStopped
				}
				return iters, Result{}, err
			}
		}

		if math.Abs(fz) < eps {
			return iters, Result{Z: z, FZ: fz, Iters: k, Converged: true}, nil
		}

		// заменяется ровно одна граница; fa — значение, вычисленное
		// в начале этой итерации, не пересчитанное
		if fa*fz < 0 {
			b = z
		} else {
			a = z
		}
		zPrev = z
	}

	return iters, Result{Z: last.Z, FZ: last.FZ, Iters: last.K}, nil
}

// Solve — полный цикл: проверка и ремонт интервала, затем итерации
func Solve(f Func, a, b, eps float64, maxIter int, onIter func(Iter) error) ([]Iter, Result, error) {
	a2, b2, _, err := SearchBracket(f, a, b)
	if err != nil {
		return nil, Result{}, err
	}
	return RegulaFalsi(f, a2, b2, eps, maxIter, onIter)
}

// eval оборачивает Func.Eval: ошибки дополняются точкой вычисления,
// NaN считается выходом за область определения
func eval(f Func, x float64) (float64, error) {
	v, err := f.Eval(x)
	if err != nil {
		return v, fmt.Errorf("вычисление f(%g): %w", x, err)
	}
	if math.IsNaN(v) {
		return v, fmt.Errorf("функция не определена в точке x = %g", x)
	}
	return v, nil
}
