package internal

import (
	"flag"
	"fmt"
	"os"
)

const (
	RunAddress           = "RUN_ADDRESS"
	DatabaseURI          = "DATABASE_URI"
	PaymentSystemAddress = "PAYMENT_SYSTEM_ADDRESS"
	JWTSecret            = "JWT_SECRET"
)

const (
	defaultRunAddress = "localhost:8080"
	defaultJWTSecret  = "secret"
)

const (
	host     = "localhost"
	port     = 5432
	user     = "postgres"
	password = "12345"
	database = "shoutout"
)

type Config struct {
	RunAddress           string
	DatabaseURI          string
	PaymentSystemAddress string
	JWTSecret            string
}

func NewConfig() (*Config, error) {
	return parseConfig(flag.CommandLine, os.Args[1:])
}

func parseConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	c := new(Config)

	defaultConn := fmt.Sprintf("host=%s port=%d user=%s "+
		"password=%s dbname=%s sslmode=disable",
		host, port, user, password, database)

	fs.StringVar(&c.RunAddress, "a", setEnvOrDefault(RunAddress, defaultRunAddress), "host to listen on")
	fs.StringVar(&c.DatabaseURI, "d", setEnvOrDefault(DatabaseURI, defaultConn), "postgres connection path")
	fs.StringVar(&c.PaymentSystemAddress, "r", setEnvOrDefault(PaymentSystemAddress, ""), "payment system address, refunds are only recorded when empty")
	fs.StringVar(&c.JWTSecret, "s", setEnvOrDefault(JWTSecret, defaultJWTSecret), "jwt signing secret")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func setEnvOrDefault(env, def string) string {
	res, e := os.LookupEnv(env)
	if !e {
		res = def
	}
	return res
}
