package notify_test

import (
	"bytes"
	"testing"

	"github.com/frahmantamala/insight-pulse/internal/notify"
	"github.com/frahmantamala/insight-pulse/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNotify(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notify Suite")
}

var _ = Describe("Notifiers", func() {
	It("records notices in order", func() {
		var rec notify.Recorder
		Expect(rec.Last()).To(Equal(notify.Notice{}))

		rec.Notify(notify.Info("Saved", "ok"))
		rec.Notify(notify.Error("Error", "boom"))

		Expect(rec.Notices()).To(HaveLen(2))
		Expect(rec.Last().Variant).To(Equal(notify.VariantDestructive))
		rec.Reset()
		Expect(rec.Notices()).To(BeEmpty())
	})

	It("fans out to every notifier", func() {
		var a, b notify.Recorder
		notify.Multi{&a, &b, notify.NewLogNotifier(logger.Discard())}.Notify(notify.Info("Hi", "there"))

		Expect(a.Notices()).To(HaveLen(1))
		Expect(b.Last().Title).To(Equal("Hi"))
	})

	It("prints title and description to the terminal", func() {
		var buf bytes.Buffer
		notify.NewTerminal(&buf).Notify(notify.Error("Login failed", "Invalid username or password"))

		Expect(buf.String()).To(ContainSubstring("Login failed:"))
		Expect(buf.String()).To(ContainSubstring("Invalid username or password"))
	})
})
