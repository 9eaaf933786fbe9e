// Package convert implements the image conversion engine.
//
// The engine decodes a source image (applying EXIF orientation so dimensions
// match what a viewer would see), computes the target geometry from the
// requested resize mode, rasterizes with Lanczos resampling, and re-encodes
// to the requested format. JPEG output is matted onto an opaque white
// background because the format carries no alpha channel.
//
// Settings captures a full conversion policy and is shared by the one-shot
// command, watch mode, and the workflow orchestrator. Geometry rules live in
// TargetSize so they can be tested without decoding pixels.
package convert
