// cmd/statusctl/main.go
//
// statusctl reads or updates the shared file register from a shell, in place
// of the detection process:
//
//	statusctl get
//	statusctl set 2
//	statusctl set drowsy
//	statusctl set 瞌睡
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/tamzrod/fatigue-relay/internal/config"
	"github.com/tamzrod/fatigue-relay/internal/logging"
	"github.com/tamzrod/fatigue-relay/internal/register"
	"github.com/tamzrod/fatigue-relay/internal/status"
)

var (
	configPath = flag.String("config", "", "YAML config file (optional; environment overrides it)")
	path       = flag.String("register", "", "register file (overrides config)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: statusctl [flags] get | set <code|label>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger, err := logging.New(true)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}
	if *path != "" {
		cfg.Register.Path = *path
	}

	reg, err := register.NewFile(cfg.Register.Path)
	if err != nil {
		logger.Fatal("open register failed", zap.Error(err))
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	switch args[0] {
	case "get":
		code, err := reg.Read()
		if err != nil {
			logger.Fatal("read failed", zap.Error(err))
		}
		fmt.Printf("%d %s\n", code, code.Label())

	case "set":
		if len(args) != 2 {
			flag.Usage()
			os.Exit(2)
		}
		if err := set(reg, args[1]); err != nil {
			logger.Fatal("update failed", zap.Error(err))
		}
		logger.Info("register updated", zap.String("path", reg.Path()), zap.String("value", args[1]))

	default:
		flag.Usage()
		os.Exit(2)
	}
}

// set accepts a numeric code or one of the detection labels.
func set(reg register.Register, v string) error {
	if n, err := strconv.Atoi(v); err == nil {
		code, err := status.ParseCode(n)
		if err != nil {
			return err
		}
		return reg.Update(code)
	}
	return register.UpdateLabel(reg, v)
}
