// bloggy is the blogging platform API server.
package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/kart-io/bloggy/internal/bloggy"
)

func main() {
	bloggy.NewApp().Run()
}
