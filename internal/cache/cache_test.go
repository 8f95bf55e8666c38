package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jellytok/jellytok/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPrune(t *testing.T) {
	Convey("Given a directory with old and new files", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		dir := "/cache/posters"
		old := filepath.Join(dir, "old.jpg")
		fresh := filepath.Join(dir, "fresh.jpg")

		So(fs.MkdirAll(dir, 0o755), ShouldBeNil)
		So(fs.WriteFile(old, []byte("old"), 0o644), ShouldBeNil)
		So(fs.WriteFile(fresh, []byte("fresh"), 0o644), ShouldBeNil)
		So(fs.Chtimes(old, now.Add(-TTL-time.Hour), now.Add(-TTL-time.Hour)), ShouldBeNil)
		So(fs.Chtimes(fresh, now.Add(-time.Hour), now.Add(-time.Hour)), ShouldBeNil)

		Convey("Only expired files are removed", func() {
			removed, err := Prune(dir, TTL, now)
			So(err, ShouldBeNil)
			So(removed, ShouldEqual, 1)

			exists, _ := fs.Exists(old)
			So(exists, ShouldBeFalse)
			exists, _ = fs.Exists(fresh)
			So(exists, ShouldBeTrue)
		})

		Convey("A missing directory is fine", func() {
			removed, err := Prune("/nowhere", TTL, now)
			So(err, ShouldBeNil)
			So(removed, ShouldEqual, 0)
		})
	})
}
