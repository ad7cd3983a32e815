// Package video opens source recordings and samples them into still frames.
//
// Sources are validated with ffprobe and sampled with ffmpeg at a fixed
// interval into frames_dir/<key>/frame_00000.png, frame_00001.png, and so
// on. The numeric suffix is the 0-based sample ordinal; multiplying it by the
// interval gives the frame's position in the recording.
package video
