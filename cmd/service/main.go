// File: cmd/service/main.go
// @title        Accounts API
// @version      1.0
// @description  帳號服務的後端 API 文件
// @host         localhost:8080
// @BasePath     /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

var exitFunc = os.Exit

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("service exited")
		exitFunc(1)
	}
}
