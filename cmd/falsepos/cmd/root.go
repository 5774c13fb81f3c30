package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "falsepos",
	Short: "Метод ложного положения (regula falsi)",
	Long: `Поиск корня трансцендентного уравнения методом ложного положения.

Веб-интерфейс (serve) и пакетный режим (solve) работают поверх одного
и того же вычислительного ядра.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}
