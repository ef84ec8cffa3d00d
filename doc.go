// Package estatedash embeds the property dashboard core in a Go program
// without the HTTP server.
//
// A Client connects to the document store and wires the same services the
// API server uses: the cached record reader, the parallel fetcher, the
// shortlist aggregator and the dashboard view builder.
//
//	client, _ := estatedash.New(estatedash.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	sess, _ := client.Login(ctx, "ann@example.com", "secret")
//	view, _ := sess.Listings(ctx, estatedash.Query{Sort: "price_asc"})
//	for _, card := range view.Listings {
//	    fmt.Println(card.Address, card.Price)
//	}
package estatedash
