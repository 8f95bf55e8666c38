package where

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jellytok/jellytok/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Cache()", func() {
			path := Cache()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs() lives under Config()", func() {
			path := Logs()
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
			So(filepath.Dir(path), ShouldEqual, Config())
		})

		Convey("Preferences() is a file in Config()", func() {
			So(filepath.Dir(Preferences()), ShouldEqual, Config())
			So(filepath.Ext(Preferences()), ShouldEqual, ".json")
		})

		Convey("Config() honours the override variable", func() {
			custom := filepath.Join(os.TempDir(), "jellytok-config-test")
			So(os.Setenv(EnvConfigPath, custom), ShouldBeNil)
			Reset(func() { _ = os.Unsetenv(EnvConfigPath) })

			So(Config(), ShouldEqual, custom)
			So(lo.Must(filesystem.API().IsDir(custom)), ShouldBeTrue)
		})
	})
}
