package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           Meu Carrim API
// @version         0.1.0
// @description     Grocery shopping lists, price history, and market comparison.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
