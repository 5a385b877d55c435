package capture

import (
	"context"

	"go.uber.org/zap"

	"github.com/wbrown/colorseg"
	"github.com/wbrown/colorseg/imageutil"
)

// KeyPollMillis is how long each iteration waits for a key, giving about
// 20 frames per second.
const KeyPollMillis = 50

// Run drives session from src and screen until the operator quits, ctx is
// done, or a frame cannot be read or shown. Rejected commands are logged
// and the loop goes on.
func Run(ctx context.Context, src Source, screen Screen, session *colorseg.Session, logger *zap.Logger) error {
	var frame *imageutil.RGBAImage
	for ctx.Err() == nil {
		key := screen.WaitKey(KeyPollMillis)
		if frame == nil || !session.Frozen() {
			next, err := src.Read()
			if err != nil {
				return err
			}
			frame = next
		}

		fb, err := session.Apply(colorseg.KeyCommand(key), frame)
		if err != nil {
			logger.Debug("key ignored", zap.Int("key", key), zap.Error(err))
		}
		if fb.Quit {
			return nil
		}

		out, err := session.Render(frame)
		if err != nil {
			return err
		}
		if err := screen.Show(out); err != nil {
			return err
		}
	}
	return nil
}
