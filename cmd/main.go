package main

import "github.com/adanyl0v/go-todo-tracker/internal/app"

func main() {
	a := app.New()
	a.MustReadEnv()
	a.MustInitApplicationLogger()

	a.MustConnectStorage()
	defer a.DisconnectStorage()

	a.MustListenAndServeHTTP()
}
