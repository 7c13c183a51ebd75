package main

import (
	"flag"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/mogaika/skeleton_viewer/config"
	"github.com/mogaika/skeleton_viewer/status"
	"github.com/mogaika/skeleton_viewer/utils"
	"github.com/mogaika/skeleton_viewer/viewer"
	"github.com/mogaika/skeleton_viewer/web"
)

func main() {
	var addr, configPath, rigPath, webPath, pprofAddr string
	var pickRadius float64
	var verbose bool
	flag.StringVar(&addr, "i", "", "Address of server (overrides config)")
	flag.StringVar(&configPath, "config", "", "Path to yaml config")
	flag.StringVar(&rigPath, "rig", "", "Rig file to load on start (overrides config)")
	flag.StringVar(&webPath, "web", "", "Path to web folder (overrides config)")
	flag.StringVar(&pprofAddr, "pprof", "", "Address of pprof server, disabled if empty")
	flag.Float64Var(&pickRadius, "pickradius", 0, "Bone pick radius (overrides config)")
	flag.BoolVar(&verbose, "v", false, "Dump effective config on start")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			log.Fatal(err)
		}
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if rigPath != "" {
		cfg.Rig = rigPath
	}
	if webPath != "" {
		cfg.WebPath = webPath
	}
	if pickRadius != 0 {
		cfg.PickRadius = pickRadius
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	config.Set(cfg)
	if verbose {
		utils.LogDump("[config] Effective config", cfg)
	}

	server := web.NewServer(viewer.NewRegistry(), status.Default())

	if cfg.Rig != "" {
		if _, err := server.Registry.LoadFile(cfg.Rig); err != nil {
			log.Fatal(err)
		}
	}

	if pprofAddr != "" {
		go http.ListenAndServe(pprofAddr, http.DefaultServeMux)
	}

	if err := web.StartServer(cfg.Addr, server, cfg.WebPath); err != nil {
		log.Fatal(err)
	}
}
