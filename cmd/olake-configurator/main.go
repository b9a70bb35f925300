package main

import (
	configurator "github.com/datazip-inc/olake-configurator"
)

func main() {
	configurator.Run()
}
