// Package resilience groups the fault tolerance helpers used around upstream calls.
//
// The subpackages are:
//   - circuitbreaker: gobreaker wrapper guarding the news API and article page fetches
//   - retry: exponential backoff with jitter for transient failures
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.NewsAPIConfig())
//	resp, err := circuitbreaker.Do(cb, func() (*Response, error) {
//	    var out *Response
//	    err := retry.WithBackoff(ctx, retry.NewsAPIConfig(), func() (err error) {
//	        out, err = call(ctx)
//	        return err
//	    })
//	    return out, err
//	})
package resilience
