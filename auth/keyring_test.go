package auth

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

func TestToken(t *testing.T) {
	Convey("Given a mock keyring", t, func() {
		keyring.MockInit()

		Convey("Tokens are stored per user", func() {
			So(SetToken("alice", "a-token"), ShouldBeNil)
			So(SetToken("bob", "b-token"), ShouldBeNil)

			token, err := GetToken("alice")
			So(err, ShouldBeNil)
			So(token, ShouldEqual, "a-token")

			Convey("and can be deleted", func() {
				So(DeleteToken("alice"), ShouldBeNil)
				_, err := GetToken("alice")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)

				token, err := GetToken("bob")
				So(err, ShouldBeNil)
				So(token, ShouldEqual, "b-token")
			})
		})

		Convey("Deleting a missing token succeeds", func() {
			So(DeleteToken("nobody"), ShouldBeNil)
		})
	})
}
