package middleware

import tele "gopkg.in/telebot.v4"

// OperatorOptions defines how operator-only checks behave.
type OperatorOptions struct {
	OperatorID int64
	OnReject   tele.HandlerFunc
}

// OperatorOnlyMiddleware ensures only the shop operator reaches downstream
// handlers. With a zero OperatorID the check is disabled.
func OperatorOnlyMiddleware(opts OperatorOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if opts.OperatorID != 0 && (sender == nil || sender.ID != opts.OperatorID) {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
