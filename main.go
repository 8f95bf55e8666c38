package main

import (
	"github.com/jellytok/jellytok/cmd"
	"github.com/jellytok/jellytok/config"
	"github.com/jellytok/jellytok/internal/cache"
	"github.com/jellytok/jellytok/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())
	defer func() { _ = log.Close() }()

	go cache.CollectGarbage()

	cmd.Execute()
}
