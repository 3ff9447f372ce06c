package smartflight

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schardosin/smartflight/pkg/config"
	"gopkg.in/yaml.v3"
)

func handleConfigCommand(args []string) error {
	if len(args) < 1 || args[0] == "-h" || args[0] == "--help" {
		printConfigUsage()
		return nil
	}

	switch args[0] {
	case "init":
		return handleConfigInit()
	case "edit":
		return handleConfigEdit()
	case "show":
		return handleConfigShow()
	case "directory":
		return handleConfigDirectory()
	default:
		return fmt.Errorf("unknown config subcommand: %s", args[0])
	}
}

func printConfigUsage() {
	fmt.Println("usage: smartflight config [-h] {init,edit,show,directory} ...")
	fmt.Println("")
	fmt.Println("positional arguments:")
	fmt.Println("  {init,edit,show,directory}")
	fmt.Println("                        Configuration management commands")
	fmt.Println("    init                Write config.yaml with the default settings")
	fmt.Println("    edit                Open config.yaml in default editor")
	fmt.Println("    show                Print the effective configuration")
	fmt.Println("    directory           Print the configuration directory path")
	fmt.Println("")
	fmt.Println("options:")
	fmt.Println("  -h, --help            show this help message and exit")
}

func handleConfigInit() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.SaveAppConfig(config.Default()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Println(path)
	return nil
}

func handleConfigEdit() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return openInEditor(path)
}

func handleConfigShow() error {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out, err := renderConfig(cfg)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// renderConfig returns cfg as YAML with secrets masked.
func renderConfig(cfg *config.AppConfig) (string, error) {
	masked := *cfg
	if masked.Assistant.Login.Password != "" {
		masked.Assistant.Login.Password = "********"
	}
	if masked.Stub.Password != "" {
		masked.Stub.Password = "********"
	}

	data, err := yaml.Marshal(&masked)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return string(data), nil
}

func handleConfigDirectory() error {
	dir, err := config.GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	fmt.Println(dir)
	return nil
}
