package main

import (
	"os"

	"github.com/pchp/asthma-etl/asthma/asthmacli"
	log "github.com/sirupsen/logrus"
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetReportCaller(true)
}

func main() {
	app := asthmacli.GetApp()
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
