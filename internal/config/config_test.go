package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func validConfig() *Config {
	return &Config{
		Server:      ServerConfig{Port: 7080, Mode: "release"},
		Persistence: PersistenceConfig{Driver: "memory"},
		Chat:        ChatConfig{MaxMessageLength: 10000, MaxMessages: 200},
	}
}

func TestConfigValidate(t *testing.T) {
	Convey("Validate", t, func() {
		Convey("accepts a complete config", func() {
			So(validConfig().Validate(), ShouldBeNil)
		})

		Convey("rejects a bad port", func() {
			cfg := validConfig()
			cfg.Server.Port = 70000
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("rejects an unknown mode", func() {
			cfg := validConfig()
			cfg.Server.Mode = "prod"
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("rejects an unknown driver", func() {
			cfg := validConfig()
			cfg.Persistence.Driver = "convex"
			So(cfg.Validate().Error(), ShouldContainSubstring, "convex")
		})

		Convey("mongo needs a uri", func() {
			cfg := validConfig()
			cfg.Persistence.Driver = "mongo"
			So(cfg.Validate(), ShouldNotBeNil)
			cfg.Mongo.URI = "mongodb://localhost:27017"
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("required auth needs a secret", func() {
			cfg := validConfig()
			cfg.Auth.Required = true
			So(cfg.Validate(), ShouldNotBeNil)
			cfg.Auth.JWTSecret = "s"
			So(cfg.Validate(), ShouldBeNil)
		})
	})
}
