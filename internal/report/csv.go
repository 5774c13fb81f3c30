// Package report сериализует трассу итераций в CSV для печати и отчётов.
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"falsepos/internal/solver"
)

// Header — колонки отчёта, в порядке исходной таблицы
var Header = []string{"Iter", "x", "y", "f(x)", "f(y)", "z", "f(z)", "Sign", "Error%"}

// Write пишет трассу в CSV вместе с заголовком
func Write(w io.Writer, iters []solver.Iter) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, it := range iters {
		if err := cw.Write(Row(it)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Row форматирует одну итерацию в строку отчёта
func Row(it solver.Iter) []string {
	return []string{
		strconv.Itoa(it.K),
		FmtFloat(it.A),
		FmtFloat(it.B),
		FmtFloat(it.FA),
		FmtFloat(it.FB),
		FmtFloat(it.Z),
		FmtFloat(it.FZ),
		it.Sign,
		FmtFloat(it.RelErr),
	}
}

// FmtFloat — единый формат чисел в отчётах
func FmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}
