// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("tables/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//	err = spatialhash.Save(ctx, store, "terrain.snap", table)
//
// Snapshots below UploadConfig.PartSize are written with a single PutObject
// carrying a CRC32C checksum; larger ones go through the multipart uploader.
// Reads use ranged GetObject requests.
package s3
