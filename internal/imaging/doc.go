// Package imaging handles the file side of plate detection: decoding
// photographs, cutting regions out of them and writing results back to disk.
//
// Detection itself lives in package plate and works on in-memory images;
// this package is what the CLI, the batch runner and the MCP server use to
// get pixels in and out.
//
// # Formats
//
// Open decodes JPEG, PNG, GIF, BMP, TIFF and WebP, applying the EXIF
// orientation tag so phone photos come back upright. Encode and Save write
// PNG, JPEG or WebP (lossy or lossless).
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner
// of the image. For regions, (x1,y1) is inclusive and (x2,y2) is exclusive.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions are stateless
// and never modify their input images.
//
// # Performance Considerations
//
// Use ImageCache when the same file is read several times, e.g. detection
// followed by digit extraction. Batch runs read each file once and should
// call Open directly so memory does not grow with the directory size.
package imaging
