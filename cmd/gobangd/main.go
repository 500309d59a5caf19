// Command gobangd is the server entrypoint: it wires the five
// registries (store, session, presence, room, matchqueue) behind the
// nano-based frame dispatcher and an HTTP mux, the way the teacher's
// go.mod implies its own cmd/ binary would (urfave/cli for flags,
// viper for config, lonng/nano for the persistent-connection gate).
package main

import (
	"net/http"
	"os"

	"github.com/lonng/nano"
	"github.com/lonng/nano/component"
	"github.com/lonng/nano/serialize/json"
	"github.com/urfave/cli"

	"github.com/EWIAW/gobang/internal/config"
	"github.com/EWIAW/gobang/internal/gamelog"
	"github.com/EWIAW/gobang/internal/gatenet"
	"github.com/EWIAW/gobang/internal/matchqueue"
	"github.com/EWIAW/gobang/internal/presence"
	"github.com/EWIAW/gobang/internal/room"
	"github.com/EWIAW/gobang/internal/session"
	"github.com/EWIAW/gobang/internal/store"
)

var logger = gamelog.New("main")

func main() {
	app := cli.NewApp()
	app.Name = "gobangd"
	app.Usage = "real-time gobang matchmaking and game server"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "path to a YAML/JSON config file",
		},
		cli.StringFlag{
			Name:  "listen, l",
			Usage: "override the HTTP listen address",
		},
		cli.StringFlag{
			Name:  "gate",
			Usage: "override the nano gate listen address",
		},
		cli.StringFlag{
			Name:  "webroot",
			Usage: "override the static web root directory",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		logger.Fatalf("gobangd exited: %v", err)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if v := c.String("listen"); v != "" {
		cfg.Listen = v
	}
	if v := c.String("gate"); v != "" {
		cfg.GateAddr = v
	}
	if v := c.String("webroot"); v != "" {
		cfg.WebRoot = v
	}

	users, err := store.Open(cfg.DB)
	if err != nil {
		return err
	}

	sessions := session.NewRegistry()
	presences := presence.NewRegistry()
	rooms := room.NewRegistry(presences, users, room.NewBlacklistFilter(room.DefaultBlacklist))
	matcher := matchqueue.New(users, presences, rooms)

	cookieKey := []byte(os.Getenv("GOBANG_COOKIE_KEY"))
	if len(cookieKey) == 0 {
		cookieKey = []byte("gobang-default-cookie-key")
		logger.Warnf("GOBANG_COOKIE_KEY not set, using an insecure default key")
	}

	httpSrv := gatenet.NewHTTPServer(sessions, users, cfg.WebRoot, cookieKey, cfg.Session)
	go func() {
		logger.Infof("http surface listening on %s", cfg.Listen)
		if err := http.ListenAndServe(cfg.Listen, httpSrv.Router()); err != nil {
			logger.Fatalf("http server stopped: %v", err)
		}
	}()

	hall := gatenet.NewHallGate(sessions, presences, matcher, cfg.Session)
	roomGate := gatenet.NewRoomGate(sessions, presences, rooms, cfg.Session)

	nano.Register(hall, component.WithName("Hall"))
	nano.Register(roomGate, component.WithName("Room"))

	logger.Infof("gate listening on %s", cfg.GateAddr)
	return nano.Listen(cfg.GateAddr,
		nano.WithIsWebsocket(true),
		nano.WithWSPath("/ws"),
		nano.WithSerializer(json.NewSerializer()),
	)
}
