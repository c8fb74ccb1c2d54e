/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"reflect"
	"strings"

	"github.com/fatih/structs"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var (
	// Store the result of binding cobra flags
	Config string
	Debug  bool

	// ConfigActual is the resolved path we actually read (or tried to).
	ConfigActual string

	// Command to run to retrieve the API token
	AuthTokenCmd []string

	AuthUsername string
	BaseURL      string

	ParsedConfig YamlConfig
)

// Build the cobra command that handles our command line tool.
var rootCmd = &cobra.Command{
	Use:   "confluence-mirror",
	Short: "Export a Confluence wiki to a browsable local HTML tree",
	Long: `
Ever had your wiki disappear behind a paywall, a migration, or a flaky VPN?  This tool walks
Confluence spaces over the REST API and writes every page out as plain HTML files that link to each
other, attachments included.  Point a browser at the result and click around, no server required.
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(cmd); err != nil {
			return fmt.Errorf("confluence-mirror: failed to initialise config: %w", err)
		}
		return nil
	},
}

func init() {
	// Define cobra flags, the default value has the lowest (least significant) precedence
	rootCmd.PersistentFlags().StringVar(&Config, "config", "", "config file location (default: ~/.config/confluence-mirror.yaml, respects CONFLUENCE_MIRROR_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "display debug output")
	rootCmd.PersistentFlags().StringSliceVar(&AuthTokenCmd, "auth-token-cmd", []string{}, "shell command to retrieve the API auth token")
	rootCmd.PersistentFlags().StringVar(&AuthUsername, "auth-username", "", "username for basic auth; leave empty to send the token as a bearer token")
	rootCmd.PersistentFlags().StringVar(&BaseURL, "base-url", "", "root URL of your wiki, e.g. https://confluence.example.com")
}

func initializeConfig(cmd *cobra.Command) error {
	explicit := Config != ""

	if Config == "" {
		// Did the user provide an ENV?
		envConfig := os.Getenv("CONFLUENCE_MIRROR_CONFIG")
		if envConfig != "" {
			Config = envConfig
			explicit = true
		} else {
			// As fallback, search for config in home XDG-ish directory
			Config = "~/.config/confluence-mirror.yaml"
		}
	}
	config, err := homedir.Expand(Config)
	if err != nil {
		return fmt.Errorf("confluence-mirror: unable to expand homedir: %w", err)
	}
	ConfigActual = config

	if _, err := os.Stat(ConfigActual); errors.Is(err, os.ErrNotExist) {
		if explicit {
			fmt.Printf("Couldn't read config file %s, does it exist?  Override with --config.\n", ConfigActual)
			return fmt.Errorf("confluence-mirror: specified config file does not exist: %w", err)
		}
		// No config file is fine, you can say it all with flags.
		debugLog("no config file at %s, continuing with flags only\n", ConfigActual)
		return nil
	}

	yamlFile, err := os.ReadFile(ConfigActual)
	if err != nil {
		return fmt.Errorf("confluence-mirror: error reading config file: %w", err)
	}

	// I'd like to bark if a user sets a flag we don't recognise:
	if err := yaml.UnmarshalStrict(yamlFile, &ParsedConfig); err != nil {
		return fmt.Errorf("confluence-mirror: issue parsing config file: %w", err)
	}

	if err := bindFlags(cmd, ParsedConfig); err != nil {
		return fmt.Errorf("confluence-mirror: failed to bind flags: %w", err)
	}

	return nil
}

type YamlConfig struct {
	WithVCR         *bool `yaml:"with-vcr"`
	AllSpaces       *bool `yaml:"all-spaces"`
	Clean           *bool `yaml:"clean"`
	SkipTLSVerify   *bool `yaml:"skip-tls-verify"`
	IncludePersonal *bool `yaml:"include-personal-spaces"`

	BaseURL        string   `yaml:"base-url"`
	AuthUsername   string   `yaml:"auth-username"`
	AuthTokenCmd   []string `yaml:"auth-token-cmd"`
	ExportFolder   string   `yaml:"export-folder"`
	DownloadFolder string   `yaml:"download-folder"`
	Template       string   `yaml:"template"`

	Spaces           []string `yaml:"spaces"`
	ThumbnailFormats []string `yaml:"thumbnail-formats"`
	PreviewFormats   []string `yaml:"preview-formats"`
	SkipExtensions   []string `yaml:"skip-extensions"`

	Workers int `yaml:"workers"`

	// These two have no flag equivalent; they only make sense in a file.
	HTTPHeaders map[string]string `yaml:"http-headers"`
	Proxies     map[string]string `yaml:"proxies"`
}

// Overlay config file values onto any cobra flags the user didn't set explicitly.
func bindFlags(cmd *cobra.Command, v YamlConfig) error {
	for _, field := range structs.Fields(v) {
		key := field.Tag("yaml")
		if key == "" {
			return fmt.Errorf("confluence-mirror: could not retrieve struct tag 'yaml'")
		}
		if flag := cmd.Flag(key); flag == nil {
			// hmm... the flag is unknown.  but that can legitimately happen if you're running
			// e.g. `list spaces` which has no `clean` flag but your YAML file does define that
			// setting...
			continue
		}
		if !cmd.Flags().Changed(key) {
			switch field.Kind() {
			case reflect.Ptr:
				// err, this is crappy, but i know YamlConfig only uses pointers for bools.....
				b, ok := field.Value().(*bool)
				if !ok {
					return fmt.Errorf("confluence-mirror: found unrecognised field: %+v", field)
				}
				if b != nil {
					cmd.Flags().Set(key, fmt.Sprintf("%v", *b))
				}

			case reflect.String:
				s, ok := field.Value().(string)
				if !ok {
					return fmt.Errorf("confluence-mirror: found unrecognised field: %+v", field)
				}
				if s != "" {
					cmd.Flags().Set(key, s)
				}

			case reflect.Int:
				i, ok := field.Value().(int)
				if !ok {
					return fmt.Errorf("confluence-mirror: found unrecognised field: %+v", field)
				}
				if i != 0 {
					cmd.Flags().Set(key, fmt.Sprintf("%d", i))
				}

			case reflect.Slice:
				ss, ok := field.Value().([]string)
				if !ok {
					return fmt.Errorf("confluence-mirror: found unrecognised field: %+v", field)
				}
				for _, s := range ss {
					// yes, repeatedly calling Set() appends to the slice...
					cmd.Flags().Set(key, s)
				}

			default:
				return fmt.Errorf("confluence-mirror: found unrecognised field: %+v", field)
			}
		}
	}

	return nil
}

// resolveAuthToken runs --auth-token-cmd if one is set; otherwise it falls back to the
// CONFLUENCE_MIRROR_TOKEN environment variable, with .env files honoured.  While we're
// at it, an empty username picks up CONFLUENCE_MIRROR_USERNAME too.
func resolveAuthToken() (string, error) {
	// No .env is fine, the variables may be in the real environment.
	_ = godotenv.Load()

	if AuthUsername == "" {
		AuthUsername = os.Getenv("CONFLUENCE_MIRROR_USERNAME")
	}

	if len(AuthTokenCmd) > 0 {
		tokenCmdOutput, err := exec.Command(AuthTokenCmd[0], AuthTokenCmd[1:]...).Output()
		if err != nil {
			return "", fmt.Errorf("confluence-mirror: couldn't execute auth-token-cmd '%v': %w", AuthTokenCmd, err)
		}

		return strings.Split(string(tokenCmdOutput), "\n")[0], nil
	}

	if token := os.Getenv("CONFLUENCE_MIRROR_TOKEN"); token != "" {
		return token, nil
	}

	return "", fmt.Errorf("confluence-mirror: no auth token: provide --auth-token-cmd or set CONFLUENCE_MIRROR_TOKEN")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Flags are only available after (or inside, presumably) the .Execute() thing.
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("confluence-mirror: execution error: %w", err)
	}

	return nil
}
