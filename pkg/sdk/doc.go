// Package feedbackflow provides an embedded Go client for the FeedbackFlow
// clustering engine backed by Redis.
//
//	client, _ := feedbackflow.New(ctx,
//	    feedbackflow.WithRedis("localhost:6379", ""),
//	    feedbackflow.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	items, _ := client.Ingest(ctx, []string{"Checkout is slow. Love the design!"})
//	result, _ := client.Run(ctx, 0.3)
//	for _, c := range result.Clusters {
//	    fmt.Println(c.Theme, c.Size)
//	}
package feedbackflow
