package jwt

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestVerifier(t *testing.T) {
	Convey("Verifier", t, func() {
		v := NewVerifier("secret", "https://id.example.com")

		Convey("accepts its own tokens", func() {
			token, err := v.Sign("user-1", time.Hour)
			So(err, ShouldBeNil)
			claims, err := v.ValidateToken(token)
			So(err, ShouldBeNil)
			So(claims.Identity(), ShouldEqual, "user-1")
		})

		Convey("rejects expired tokens", func() {
			token, _ := v.Sign("user-1", -time.Minute)
			_, err := v.ValidateToken(token)
			So(err, ShouldEqual, ErrExpiredToken)
		})

		Convey("rejects another secret", func() {
			token, _ := NewVerifier("other", "https://id.example.com").Sign("user-1", time.Hour)
			_, err := v.ValidateToken(token)
			So(err, ShouldEqual, ErrInvalidToken)
		})

		Convey("rejects another issuer", func() {
			token, _ := NewVerifier("secret", "https://evil.example.com").Sign("user-1", time.Hour)
			_, err := v.ValidateToken(token)
			So(err, ShouldEqual, ErrInvalidToken)
		})

		Convey("rejects garbage", func() {
			_, err := v.ValidateToken("not-a-token")
			So(err, ShouldEqual, ErrInvalidToken)
		})
	})
}
