package chain

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCleanTitle(t *testing.T) {
	Convey("cleanTitle", t, func() {
		So(cleanTitle("  \"Trip to Lisbon!\"  ", 50), ShouldEqual, "Trip to Lisbon")
		So(cleanTitle("First line\nsecond line", 50), ShouldEqual, "First line")
		So(cleanTitle("abcdefghij", 4), ShouldEqual, "abcd")
		So(cleanTitle("   ", 50), ShouldEqual, "")
	})
}
