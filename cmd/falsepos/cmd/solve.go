package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"falsepos/internal/report"
	"falsepos/internal/solver"
)

var (
	solveFunc    string
	solveA       float64
	solveB       float64
	solveEps     float64
	solveMaxIter int
	solveCSV     string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Считает корень в пакетном режиме",
	Long: `Считает корень уравнения f(x) = 0 и печатает таблицу итераций.

Пример:
  falsepos solve -f "exp(x) - 20" --a 2 --b 3 --eps 0.0001`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&solveFunc, "func", "f", "", "выражение f(x), например \"exp(x) - 20\"")
	solveCmd.Flags().Float64Var(&solveA, "a", 0, "нижняя граница интервала")
	solveCmd.Flags().Float64Var(&solveB, "b", 0, "верхняя граница интервала")
	solveCmd.Flags().Float64Var(&solveEps, "eps", 1e-4, "допуск по |f(z)|")
	solveCmd.Flags().IntVar(&solveMaxIter, "max-iter", solver.DefaultMaxIter, "предел итераций")
	solveCmd.Flags().StringVar(&solveCSV, "csv", "", "сохранить таблицу итераций в CSV-файл")
	_ = solveCmd.MarkFlagRequired("func")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	if solveA == solveB {
		return errors.New("требуется a != b")
	}

	f, err := solver.NewEvalFunc(solveFunc)
	if err != nil {
		return fmt.Errorf("ошибка в выражении функции: %w", err)
	}

	a, b, attempts, err := solver.SearchBracket(f, solveA, solveB)
	if err != nil {
		return err
	}
	if attempts > 0 {
		fmt.Printf("Интервал [%g, %g] не содержит смену знака, расширен до [%g, %g] за %d шагов\n\n",
			solveA, solveB, a, b, attempts)
	}

	iters, res, err := solver.RegulaFalsi(f, a, b, solveEps, solveMaxIter, nil)
	if err != nil {
		return err
	}

	fmt.Println(renderIters(iters))

	if res.Converged {
		fmt.Printf("Корень z = %.6f, f(z) = %.8f, итераций: %d\n", res.Z, res.FZ, res.Iters)
	} else {
		fmt.Printf("Не сошлось за %d итераций; последняя оценка z = %.6f, f(z) = %.8f\n",
			res.Iters, res.Z, res.FZ)
	}

	if solveCSV != "" {
		out, err := os.Create(solveCSV)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := report.Write(out, iters); err != nil {
			return err
		}
		fmt.Println("Отчёт сохранён в", solveCSV)
	}

	return nil
}

var (
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Align(lipgloss.Center).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
)

func renderIters(iters []solver.Iter) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers(report.Header...)

	for _, it := range iters {
		tbl.Row(
			strconv.Itoa(it.K),
			cell(it.A), cell(it.B),
			cell(it.FA), cell(it.FB),
			cell(it.Z), cell(it.FZ),
			it.Sign,
			cell(it.RelErr),
		)
	}

	return tbl.Render()
}

// короткий формат для консоли; полноточный остаётся в CSV
func cell(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
