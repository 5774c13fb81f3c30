package cmd

import (
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"falsepos/internal/config"
	"falsepos/internal/server"
)

var (
	serveConfig string
	serveAddr   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запускает веб-интерфейс",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfig, "config", "config.yaml", "путь к YAML-конфигурации")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "адрес прослушивания (перекрывает конфигурацию)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfig)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	s := server.New(cfg)
	log.Println("Сервер запущен на", cfg.Addr)
	log.Println("Статика отдаётся из:", cfg.StaticDir)
	return http.ListenAndServe(cfg.Addr, s.Router())
}
