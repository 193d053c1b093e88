package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"accounts-api/internal/app"
	"accounts-api/internal/config"
	"accounts-api/internal/database"
	"accounts-api/internal/logger"
	"accounts-api/internal/model"
	"accounts-api/internal/password"
	"accounts-api/internal/store"

	_ "accounts-api/docs" // 引入 swag 產出的 docs

	"github.com/spf13/cobra"
	echoSwagger "github.com/swaggo/echo-swagger"
)

var (
	loadConfig = config.Load
	newApp     = app.New
	newPgxPool = database.NewPgxPool
	createAll  = database.CreateAll
	dropAll    = database.DropAll
	createUser = store.CreateUser
	runApp     = func(ctx context.Context, a *app.App) error { return a.Run(ctx) }
)

func run(args []string) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func newRootCmd() *cobra.Command {
	var envFile string

	serve := newServeCmd(&envFile)
	root := &cobra.Command{
		Use:           "service",
		Short:         "Accounts API 後端服務",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "啟動前載入的 .env 檔")

	root.AddCommand(serve)
	root.AddCommand(newMigrateCmd(&envFile))
	root.AddCommand(newCreateAdminCmd(&envFile))
	return root
}

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "執行資料庫遷移並啟動 HTTP 服務",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			if err := createAll(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("Migration 執行失敗: %w", err)
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					a.Log.Error().Err(err).Msg("關閉服務失敗")
				}
			}()

			// Swagger UI
			a.Echo.GET("/swagger/*", echoSwagger.WrapHandler)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runApp(ctx, a)
		},
	}
}

func newMigrateCmd(envFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "管理資料庫 schema",
	}
	step := func(use, short string, fn func(string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(*envFile)
				if err != nil {
					return err
				}
				if err := fn(cfg.DatabaseURL); err != nil {
					return err
				}
				l := logger.Component(logger.New(cfg.LogLevel, cfg.LogFormat), "migrate")
				l.Info().Str("direction", use).Msg("migration finished")
				return nil
			},
		}
	}
	cmd.AddCommand(step("up", "套用所有遷移", createAll))
	cmd.AddCommand(step("down", "回滾所有遷移（刪除所有資料表）", dropAll))
	return cmd
}

func newCreateAdminCmd(envFile *string) *cobra.Command {
	var email, plain string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "建立管理員帳號",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("--email 未設定")
			}
			if err := password.Validate(plain); err != nil {
				return fmt.Errorf("密碼不符合規則: %w", err)
			}
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			if err := password.SetCost(cfg.BcryptCost); err != nil {
				return err
			}

			db, err := newPgxPool(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("DB 連線失敗: %w", err)
			}
			defer db.Close()

			u := &model.User{Email: email, IsAdmin: true, IsVerified: true}
			if err := u.SetPassword(plain); err != nil {
				return err
			}
			created, err := createUser(cmd.Context(), db, u)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %d <%s>\n", created.ID, created.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "管理員 Email")
	cmd.Flags().StringVar(&plain, "password", "", "管理員密碼")
	return cmd
}
