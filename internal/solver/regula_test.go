package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFunc(t *testing.T, expr string) Func {
	t.Helper()
	f, err := NewEvalFunc(expr)
	require.NoError(t, err)
	return f
}

// TestSolveExponential проверяет сходимость на exp(x) - 20 при корректном
// исходном интервале [2, 3].
func TestSolveExponential(t *testing.T) {
	f := mustFunc(t, "exp(x) - 20")

	iters, res, err := Solve(f, 2.0, 3.0, 1e-4, DefaultMaxIter, nil)
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, 3, res.Iters)
	assert.Len(t, iters, 3)
	assert.InDelta(t, 2.9957, res.Z, 1e-3)
	assert.Less(t, math.Abs(res.FZ), 1e-4)

	// на первой итерации предыдущей оценки нет
	assert.Equal(t, 100.0, iters[0].RelErr)
}

// TestSolveSqrt2 проверяет сходимость на x^2 - 2 (корень √2).
func TestSolveSqrt2(t *testing.T) {
	f := mustFunc(t, "x^2 - 2")

	_, res, err := Solve(f, 1.0, 2.0, 1e-5, DefaultMaxIter, nil)
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, 7, res.Iters)
	assert.InDelta(t, 1.41421, res.Z, 1e-4)
	assert.Less(t, math.Abs(res.FZ), 1e-5)
}

// TestIterInvariants проверяет свойства трассы: смена знака на концах,
// невозрастающая ширина интервала, z строго внутри, сквозная нумерация.
func TestIterInvariants(t *testing.T) {
	cases := []struct {
		name string
		expr string
		a, b float64
	}{
		{"exp", "exp(x) - 20", 2.0, 3.0},
		{"parabola", "x^2 - 2", 1.0, 2.0},
		{"cos", "cos(x)", 1.0, 2.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := mustFunc(t, tc.expr)
			iters, _, err := Solve(f, tc.a, tc.b, 1e-6, DefaultMaxIter, nil)
			require.NoError(t, err)
			require.NotEmpty(t, iters)

			prevWidth := math.Inf(1)
			for i, it := range iters {
				assert.Equal(t, i+1, it.K)
				assert.Negative(t, it.FA*it.FB, "итерация %d: на концах нет смены знака", it.K)

				lo, hi := math.Min(it.A, it.B), math.Max(it.A, it.B)
				assert.Greater(t, it.Z, lo)
				assert.Less(t, it.Z, hi)

				width := math.Abs(it.B - it.A)
				assert.LessOrEqual(t, width, prevWidth)
				prevWidth = width
			}
		})
	}
}

// TestSearchBracketRepairs: интервал [0, 0.5] не содержит смену знака для
// exp(x) - 20, поиск должен расширить его до [-4, 4.5] за два шага.
func TestSearchBracketRepairs(t *testing.T) {
	f := mustFunc(t, "exp(x) - 20")

	a, b, attempts, err := SearchBracket(f, 0.0, 0.5)
	require.NoError(t, err)
	assert.Equal(t, -4.0, a)
	assert.Equal(t, 4.5, b)
	assert.Equal(t, 2, attempts)

	// корень ~2.9957 лежит внутри найденного интервала
	assert.Less(t, a, 2.9957)
	assert.Greater(t, b, 2.9957)
}

// TestSolveAfterRepair: на широком интервале [-4, 4.5] двадцати итераций
// не хватает — возвращается последняя оценка с Converged=false, а с запасом
// по итерациям метод сходится к тому же корню.
func TestSolveAfterRepair(t *testing.T) {
	f := mustFunc(t, "exp(x) - 20")

	iters, res, err := Solve(f, 0.0, 0.5, 1e-4, DefaultMaxIter, nil)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, DefaultMaxIter, res.Iters)
	assert.Len(t, iters, DefaultMaxIter)
	assert.InDelta(t, 2.9957, res.Z, 1e-2)

	_, res, err = Solve(f, 0.0, 0.5, 1e-4, 100, nil)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 28, res.Iters)
	assert.InDelta(t, 2.9957, res.Z, 1e-3)
}

// TestSearchBracketExhausted: из [-100, -99] пятидесяти расширений шагом 2.0
// не хватает, чтобы дотянуться до корня exp(x) - 20 (нужно b >= 3).
func TestSearchBracketExhausted(t *testing.T) {
	f := mustFunc(t, "exp(x) - 20")

	_, _, err := Solve(f, -100.0, -99.0, 1e-4, DefaultMaxIter, nil)
	var nb *NoBracketError
	require.ErrorAs(t, err, &nb)
	assert.Equal(t, -200.0, nb.A)
	assert.Equal(t, 1.0, nb.B)
	assert.Equal(t, 50, nb.Attempts)
}

// TestNoBracketForRootless: у x^2 + 1 вещественных корней нет, поиск обязан
// исчерпать лимит.
func TestNoBracketForRootless(t *testing.T) {
	f := mustFunc(t, "x^2 + 1")

	_, _, _, err := SearchBracket(f, -1.0, 1.0)
	var nb *NoBracketError
	require.ErrorAs(t, err, &nb)
	assert.Equal(t, 50, nb.Attempts)
}

// TestDegenerateBracket: у константы значения на концах совпадают, формула
// интерполяции не определена — ошибка, а не молчаливое деление на ноль.
func TestDegenerateBracket(t *testing.T) {
	f := mustFunc(t, "5")

	_, _, err := RegulaFalsi(f, 0.0, 1.0, 1e-4, DefaultMaxIter, nil)
	require.ErrorIs(t, err, ErrDegenerate)

	// через Solve константа не проходит проверку смены знака
	_, _, err = Solve(f, 0.0, 1.0, 1e-4, DefaultMaxIter, nil)
	var nb *NoBracketError
	require.ErrorAs(t, err, &nb)
}

// TestBadParams проверяет входные ограничения цикла.
func TestBadParams(t *testing.T) {
	f := mustFunc(t, "x")

	_, _, err := RegulaFalsi(f, 0.0, 1.0, 0, DefaultMaxIter, nil)
	assert.Error(t, err)

	_, _, err = RegulaFalsi(f, 1.0, 1.0, 1e-4, DefaultMaxIter, nil)
	assert.Error(t, err)
}

// TestIterCapAlwaysTerminates: при недостижимой точности цикл делает ровно
// maxIter итераций и возвращает последнюю оценку.
func TestIterCapAlwaysTerminates(t *testing.T) {
	f := mustFunc(t, "exp(x) - 20")

	iters, res, err := Solve(f, 2.0, 3.0, 1e-300, 5, nil)
	require.NoError(t, err)
	assert.Len(t, iters, 5)
	assert.False(t, res.Converged)
	assert.Equal(t, 5, res.Iters)
	assert.InDelta(t, 2.9957, res.Z, 1e-3)
}

// TestStopCallback: ErrStopped из onIter прерывает цикл после текущей итерации.
func TestStopCallback(t *testing.T) {
	f := mustFunc(t, "exp(x) - 20")

	iters, _, err := Solve(f, 2.0, 3.0, 1e-300, DefaultMaxIter, func(Iter) error {
		return ErrStopped
	})
	require.ErrorIs(t, err, ErrStopped)
	assert.Len(t, iters, 1)
}

// TestOnIterSeesEveryRecord: callback получает те же записи, что и трасса.
func TestOnIterSeesEveryRecord(t *testing.T) {
	f := mustFunc(t, "x^2 - 2")

	var seen []Iter
	iters, _, err := Solve(f, 1.0, 2.0, 1e-5, DefaultMaxIter, func(it Iter) error {
		seen = append(seen, it)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, iters, seen)
}
