package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	authsession "github.com/viant/authsession"
	"github.com/viant/authsession/client/identity"
	"github.com/viant/authsession/internal/config"
	"github.com/viant/authsession/internal/logging"
)

func Run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	return run(context.Background(), cfg, args, os.Stdout)
}

func run(ctx context.Context, cfg *config.Config, args []string, output io.Writer) error {
	options := &Options{Options: *authsession.NewOptions(cfg)}
	parser := flags.NewParser(options, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return err
	}
	if parser.Active == nil {
		return errors.New("command was empty")
	}
	session, err := authsession.New(&options.Options)
	if err != nil {
		return err
	}
	defer session.Close()

	service := NewService(session, output)
	switch parser.Active.Name {
	case "login":
		return service.Login(ctx, &options.Login)
	case "whoami":
		return service.Whoami(ctx)
	case "logout":
		return service.Logout(ctx)
	case "get":
		return service.Get(ctx, options.Get.Args.Path)
	case "check":
		return service.Check(ctx, identity.Role(options.Check.Access), options.Check.Args.Path)
	}
	return errors.New("unsupported command: " + parser.Active.Name)
}
