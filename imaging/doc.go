// Package imaging holds the frame type and the resize + median filter stage
// of the median pipeline.
//
// A [Frame] is a row-major, channel-interleaved grid of samples in [0, 1].
// [ResizeMedian] resizes a frame bilinearly and then replaces every sample by
// the median of its neighborhood selected by a [Footprint]. [NewMedianFilter]
// runs that transform as a pipe.Broker between two queues.
package imaging
