package main

import (
	"github.com/suitedesk/suitedesk/internal/server"
	"go.uber.org/fx"
)

func main() {
	fx.New(server.Module).Run()
}
