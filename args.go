package main

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds everything the process needs at startup. Flags can also be
// set through the environment with the MARKET_ prefix (dashes become
// underscores, e.g. MARKET_ACCOUNT_SERVICE_URL).
type Config struct {
	ListenAddr        string
	AccountServiceURL string
	JWTSecret         string

	AuctionDuration time.Duration
	CallTimeout     time.Duration
	CallAttempts    int
	RetryInterval   time.Duration

	SchedulerRetryBase time.Duration
	SchedulerRetryMax  time.Duration
}

func ParseArgs() Config {
	// server config
	pflag.String("listen-addr", ":8080", "")

	// external collaborators
	pflag.String("account-service-url", "http://localhost:8081", "")
	pflag.String("jwt-secret", "", "")

	// auction config
	pflag.Duration("auction-duration", 10*time.Minute, "")

	// consistency layer config
	pflag.Duration("call-timeout", 3*time.Second, "")
	pflag.Int("call-attempts", 4, "")
	pflag.Duration("retry-interval", 200*time.Millisecond, "")

	// scheduler config
	pflag.Duration("scheduler-retry-base", 5*time.Second, "")
	pflag.Duration("scheduler-retry-max", 2*time.Minute, "")

	// bind pflag to viper
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("MARKET")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	return Config{
		ListenAddr:         viper.GetString("listen-addr"),
		AccountServiceURL:  viper.GetString("account-service-url"),
		JWTSecret:          viper.GetString("jwt-secret"),
		AuctionDuration:    viper.GetDuration("auction-duration"),
		CallTimeout:        viper.GetDuration("call-timeout"),
		CallAttempts:       viper.GetInt("call-attempts"),
		RetryInterval:      viper.GetDuration("retry-interval"),
		SchedulerRetryBase: viper.GetDuration("scheduler-retry-base"),
		SchedulerRetryMax:  viper.GetDuration("scheduler-retry-max"),
	}
}
