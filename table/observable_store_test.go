package table

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"
)

func TestObservableStore(t *testing.T) {
	convey.Convey("观测装饰器", t, func() {
		registry := prometheus.NewRegistry()
		store, err := NewObservableStoreWithOptions(NewMemStore(), &ObservableStoreOptions{
			EnableMetrics: true,
			EnableLogging: true,
			Name:          "test_store",
			Registerer:    registry,
		})
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("操作透传到内层存储", func() {
			runStoreSuite(store)
		})

		convey.Convey("成功与失败分别计数", func() {
			convey.So(store.WriteTable("t1", storeTestData), convey.ShouldBeNil)
			_, err := store.ReadTable("t1")
			convey.So(err, convey.ShouldBeNil)
			_, err = store.ReadTable("missing")
			convey.So(err, convey.ShouldNotBeNil)

			counter := store.metrics.operationCounter
			convey.So(testutil.ToFloat64(counter.WithLabelValues("read", "t1", "success")), convey.ShouldEqual, 1)
			convey.So(testutil.ToFloat64(counter.WithLabelValues("read", "missing", "error")), convey.ShouldEqual, 1)
			convey.So(testutil.ToFloat64(counter.WithLabelValues("write", "t1", "success")), convey.ShouldEqual, 1)
		})
	})
}
