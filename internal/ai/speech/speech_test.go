package speech

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"natgpt/internal/config"
	"natgpt/internal/pkg/storage/local"
)

type countingSynth struct {
	calls int
	err   error
}

func (s *countingSynth) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte("mp3:" + voice + ":" + text), nil
}

func TestNormalizeLanguage(t *testing.T) {
	Convey("NormalizeLanguage", t, func() {
		So(NormalizeLanguage("es"), ShouldEqual, "es")
		So(NormalizeLanguage(" EN "), ShouldEqual, "en")
		So(NormalizeLanguage("fr"), ShouldEqual, "en")
		So(NormalizeLanguage(""), ShouldEqual, "en")
	})
}

func TestVoices(t *testing.T) {
	Convey("voices", t, func() {
		So(IsSupportedVoice(""), ShouldBeTrue)
		So(IsSupportedVoice("Nova"), ShouldBeTrue)
		So(IsSupportedVoice("robot"), ShouldBeFalse)

		c, err := NewClient(&config.SpeechConfig{APIKey: "k"})
		So(err, ShouldBeNil)
		v, err := c.voice("")
		So(err, ShouldBeNil)
		So(string(v), ShouldEqual, DefaultVoice)
		_, err = c.voice("robot")
		So(errors.Is(err, ErrInvalidVoice), ShouldBeTrue)
	})

	Convey("NewClient requires a key", t, func() {
		_, err := NewClient(&config.SpeechConfig{})
		So(errors.Is(err, ErrNotConfigured), ShouldBeTrue)
	})
}

func TestConfidence(t *testing.T) {
	Convey("confidence maps log-probabilities into 0..1", t, func() {
		So(confidence(0), ShouldEqual, 1)
		So(confidence(-0.5), ShouldAlmostEqual, 0.607, 0.001)
		So(confidence(3), ShouldEqual, 1)
	})
}

func TestCachedSynthesizer(t *testing.T) {
	ctx := context.Background()

	Convey("CachedSynthesizer", t, func() {
		store, err := local.NewLocalStorage(t.TempDir(), "")
		So(err, ShouldBeNil)
		inner := &countingSynth{}
		cached := NewCachedSynthesizer(inner, store)

		Convey("renders once per voice and text", func() {
			a, err := cached.Synthesize(ctx, "hello", "nova")
			So(err, ShouldBeNil)
			b, err := cached.Synthesize(ctx, "hello", "nova")
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, string(a))
			So(inner.calls, ShouldEqual, 1)

			_, err = cached.Synthesize(ctx, "hello", "onyx")
			So(err, ShouldBeNil)
			So(inner.calls, ShouldEqual, 2)
		})

		Convey("does not cache failures", func() {
			inner.err = errors.New("upstream down")
			_, err := cached.Synthesize(ctx, "hello", "nova")
			So(err, ShouldNotBeNil)
			ok, _ := store.Exists(ctx, CacheKey("nova", "hello"))
			So(ok, ShouldBeFalse)
		})

		Convey("keys are stable and distinct", func() {
			So(CacheKey("nova", "x"), ShouldEqual, CacheKey(" Nova ", "x"))
			So(CacheKey("nova", "x"), ShouldNotEqual, CacheKey("nova", "y"))
			So(strings.HasPrefix(CacheKey("nova", "x"), "speech/"), ShouldBeTrue)
		})
	})
}
