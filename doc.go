// Package ghostpub publishes Markdown documents from a local vault to a Ghost
// blog through the Admin API.
//
// A publish run reads one document, mints a short-lived admin token, uploads
// the images it embeds, rewrites wiki links to the URLs of already published
// documents, and creates or updates the remote post. The document then gets
// its post ID, URL and date written back into its frontmatter and moves into
// the published folder.
//
// Usage:
//
//	ws, err := ghostpub.New("./vault", ghostpub.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	res, err := ws.Publish(ctx, "writing/Hello World.md")
//	if err != nil {
//		fmt.Println(core.Summary(err))
//	}
package ghostpub
