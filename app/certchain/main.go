package main

import (
	formatter "github.com/bluexlab/logrus-formatter"
	"github.com/certchain/certchain/pkg/certchain/cli"
)

func main() {
	formatter.InitLogger()
	app := cli.App{}
	app.Run()
}
