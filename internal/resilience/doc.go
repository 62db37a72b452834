// Package resilience groups the fault tolerance helpers used for outbound
// calls: circuit breakers around the status feed and the notification
// webhooks, and retry with exponential backoff for webhook delivery.
//
//	cb := circuitbreaker.New(circuitbreaker.WebhookConfig("slack"))
//	err := retry.WithBackoff(ctx, retry.WebhookConfig(), func() error {
//	    return cb.Run(func() error { return post(ctx) })
//	})
package resilience
