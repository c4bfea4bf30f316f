package engine

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hatlonely/metax/meta"
)

func TestEntityCacheInvalidateDuringLoad(t *testing.T) {
	Convey("测试加载期间失效不会缓存过期结果", t, func() {
		c := &entityCache{}
		ctx := context.Background()

		started := make(chan struct{})
		release := make(chan struct{})
		staleDone := make(chan []*meta.EntityMeta)

		go func() {
			entities, _ := c.get(ctx, func(ctx context.Context) ([]*meta.EntityMeta, error) {
				close(started)
				<-release
				return []*meta.EntityMeta{{Code: "stale"}}, nil
			})
			staleDone <- entities
		}()

		<-started
		c.invalidate()
		close(release)

		// 当次加载的调用方仍然拿到它自己的结果
		stale := <-staleDone
		So(len(stale), ShouldEqual, 1)
		So(stale[0].Code, ShouldEqual, "stale")

		// 过期结果没有进入缓存，下一次访问重新加载
		entities, err := c.get(ctx, func(ctx context.Context) ([]*meta.EntityMeta, error) {
			return []*meta.EntityMeta{{Code: "fresh"}}, nil
		})
		So(err, ShouldBeNil)
		So(len(entities), ShouldEqual, 1)
		So(entities[0].Code, ShouldEqual, "fresh")

		// 重新加载的结果正常缓存
		loads := 0
		entities, err = c.get(ctx, func(ctx context.Context) ([]*meta.EntityMeta, error) {
			loads++
			return nil, nil
		})
		So(err, ShouldBeNil)
		So(loads, ShouldEqual, 0)
		So(entities[0].Code, ShouldEqual, "fresh")
	})
}
