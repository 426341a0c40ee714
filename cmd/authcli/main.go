package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/jrsteele09/go-auth-client/gatekeeper"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/sessionview"
	"github.com/jrsteele09/go-auth-client/storage/filestore"
	"github.com/jrsteele09/go-auth-client/storage/redisstore"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		email    = flag.String("email", "", "email to log in with")
		password = flag.String("password", "", "password to log in with")
		get      = flag.String("get", "", "URL to GET with an attached bearer token")
		logout   = flag.Bool("logout", false, "log out and clear stored tokens")
	)
	flag.Parse()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	storage, err := newStorage(c, logger)
	if err != nil {
		return err
	}

	tokens, err := token.NewStore(storage, logger, token.WithRenewalBuffer(c.GetRenewalBuffer()))
	if err != nil {
		return err
	}

	endpoint, err := authapi.NewClient(c.GetBaseURL(), logger,
		authapi.WithHTTPClient(&http.Client{Timeout: c.GetHTTPTimeout()}))
	if err != nil {
		return err
	}

	coordinator, err := session.NewCoordinator(tokens, endpoint, logger,
		session.WithValidityCacheTTL(c.GetValidityCacheTTL()))
	if err != nil {
		return err
	}

	view, err := sessionview.New(coordinator, logger,
		sessionview.WithErrorDisplayWindow(c.GetErrorDisplayWindow()))
	if err != nil {
		return err
	}

	claims := coordinator.Restore()
	if claims != nil {
		fmt.Printf("Session restored for %s\n", claims.Email)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *logout {
		if err := view.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	}

	if *email != "" {
		if err := view.Login(ctx, *email, *password); err != nil {
			return err
		}
		current, err := coordinator.CurrentUser()
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (role %q)\n", current.Email, utils.Value(current).Role)
	}

	if *get != "" {
		return fetch(ctx, coordinator, c, logger, *get)
	}
	return nil
}

func fetch(ctx context.Context, coordinator *session.Coordinator, c config.Config, logger zerolog.Logger, url string) error {
	gk, err := gatekeeper.New(coordinator, gatekeeper.NopNavigator{}, logger,
		gatekeeper.WithAuthPathSuffixes(c.GetAuthPathSuffixes()),
		gatekeeper.WithLoginPath(c.GetLoginPath()))
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := gk.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n%s\n", resp.Proto, resp.Status, body)
	return nil
}

func newStorage(c config.Config, logger zerolog.Logger) (token.Storage, error) {
	if addr := c.GetRedisAddr(); addr != "" {
		return redisstore.New(redis.NewClient(&redis.Options{Addr: addr}), logger)
	}
	return filestore.New(c.GetDataFolder(), logger)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
