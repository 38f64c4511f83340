package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repokit/config"
	"repokit/logging"
	"repokit/users/bootstrap"
)

// skipStack 只需配置、不需要打开仓储的命令
const skipStack = "skip-stack"

// cli 单次命令执行的共享状态
type cli struct {
	configFile string
	cfg        *config.Config
	stack      *bootstrap.Stack
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "usersctl",
		Short: "Manage users stored in a repokit repository",
		Long: `usersctl manages users through the repokit repository abstraction.

The storage backend is selected by configuration (repokit.yaml or REPOKIT_*
environment variables): memory, sqlite, postgres, mysql or redis.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: ./repokit.yaml or ~/.repokit/repokit.yaml)")

	root.AddCommand(
		newVersionCmd(),
		newSignupCmd(c),
		newGetCmd(c),
		newListCmd(c),
		newUpdateCmd(c),
		newUpdatePasswordCmd(c),
		newDeleteCmd(c),
		newWatchCmd(c),
	)
	return root
}

// setup 加载配置、初始化日志并按需装配仓储
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg

	logging.SetLogger(logging.NewSlogLogger(logging.Options{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	}))

	if _, ok := cmd.Annotations[skipStack]; ok {
		return nil
	}

	stack, err := bootstrap.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	c.stack = stack
	return nil
}

func (c *cli) teardown() error {
	if c.stack == nil {
		return nil
	}
	err := c.stack.Close()
	c.stack = nil
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		// 不加载配置
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "usersctl v0.1.0")
		},
	}
}
