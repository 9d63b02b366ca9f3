package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/sdtheme/internal/config"
	"github.com/oakwood-commons/sdtheme/pkg/icon"
	"github.com/oakwood-commons/sdtheme/pkg/logger"
	"github.com/oakwood-commons/sdtheme/pkg/manager"
	"github.com/oakwood-commons/sdtheme/pkg/settings"
	"github.com/oakwood-commons/sdtheme/pkg/storage"
)

var (
	// hostFs is where both the config file and the card's theme tree are read.
	hostFs     afero.Fs = afero.NewOsFs()
	isTerminal          = term.IsTerminal
	configDirs          = defaultConfigDirs
)

type rootOptions struct {
	themesRoot string
	configFile string
	debug      bool
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           settings.CliBinaryName,
		Short:         "Inspect and validate SD-card themes",
		Long:          "sdtheme loads a theme directory the way the device does (theme.ini, layout.json and icons/) and shows the merged result.",
		Example:       "\n  sdtheme list\n  sdtheme inspect neon -o json\n  sdtheme validate neon\n  sdtheme preview neon --icons-out /tmp/neon-icons\n  sdtheme pick\n",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v := config.New(hostFs)
			if err := v.BindPFlag(config.KeyThemesRoot, cmd.Root().PersistentFlags().Lookup("themes-root")); err != nil {
				return err
			}
			cfg, err := config.Load(v, opts.configFile, configDirs()...)
			if err != nil {
				return err
			}

			run := settings.NewCliParams()
			cfg.Apply(run)
			run.ConfigFile = opts.configFile
			// --debug maps to zap debug level (-1), which also shows logr V(1).
			if opts.debug && run.MinLogLevel > -1 {
				run.MinLogLevel = -1
			}
			run.NoColor = opts.noColor || !writesToTerminal(cmd)

			lgr := logger.Get(run.MinLogLevel)
			lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = logger.WithLogger(ctx, lgr)
			cmd.SetContext(settings.IntoContext(ctx, run))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.themesRoot, "themes-root", settings.DefaultThemesRoot, "directory holding one sub-directory per theme")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to a YAML config file (default: .sdtheme.yaml in $HOME or /etc/sdtheme)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log every rejected field and skipped icon")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable color output")

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(
		newVersionCmd(),
		newListCmd(),
		newInspectCmd(),
		newValidateCmd(),
		newPreviewCmd(),
		newPickCmd(),
	)
	return rootCmd
}

// Execute runs the sdtheme command tree.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func defaultConfigDirs() []string {
	dirs := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	return append(dirs, "/etc/sdtheme")
}

func writesToTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && isTerminal(int(f.Fd()))
}

func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime)
}

// runSettings returns the settings stored by the root pre-run.
func runSettings(cmd *cobra.Command) *settings.Run {
	if run, ok := settings.FromContext(cmd.Context()); ok {
		return run
	}
	return settings.NewCliParams()
}

// newManager builds a theme manager over the configured themes root. Failed
// activations are reported on stderr.
func newManager(cmd *cobra.Command) (*manager.Manager, error) {
	run := runSettings(cmd)
	r, err := icon.NewResolver(hostFs,
		icon.WithBox(run.IconBox, run.IconBox),
		icon.WithCacheSize(run.IconCache),
	)
	if err != nil {
		return nil, err
	}
	return manager.New(hostFs, run.ThemesRoot,
		manager.WithResolver(r),
		manager.WithNotifier(func(name string, err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "theme %q could not be activated: %v\n", name, err)
		}),
	)
}

// completeThemes offers the theme directories under --themes-root.
func completeThemes(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	root, err := cmd.Flags().GetString("themes-root")
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	m, err := manager.New(hostFs, root)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names, err := m.Themes()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// themeArg is the theme named on the command line, else the configured one.
func themeArg(cmd *cobra.Command, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return runSettings(cmd).Theme
}

// activate loads name. The name "default" falls back to the compiled
// defaults when no theme directory has that name.
func activate(cmd *cobra.Command, m *manager.Manager, name string) (*manager.Snapshot, error) {
	if name == manager.DefaultName {
		if _, err := storage.Stat(hostFs, filepath.Join(m.Root(), name)); storage.IsMissing(err) {
			return m.Current(), nil
		}
	}
	return m.Activate(cmd.Context(), name)
}
