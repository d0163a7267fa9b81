// Package httpclient is the HTTP client used to talk to inference, splitter
// and diarization sidecars and to fetch remote warmup assets.
//
// It adds a base URL, default headers, retry with backoff, multipart
// uploads and status-code classification on top of net/http.
//
//	client, _ := httpclient.New(httpclient.Config{
//	    BaseURL: "http://localhost:8387",
//	    Timeout: 2 * time.Minute,
//	    Retry:   httpclient.DefaultRetryConfig(),
//	})
//	var out loadResponse
//	err := client.PostJSON(ctx, "/load", loadRequest{Model: "tiny"}, &out)
package httpclient
