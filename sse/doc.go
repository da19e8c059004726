// Package sse implements the streaming wire codec for agent service
// responses: a line-oriented event-stream encoding (`data: <json>` frames
// terminated by a literal `data: [DONE]` sentinel) plus the buffered
// application/json variant used when a caller requests stream=false.
//
// The decoder is deliberately defensive. It assumes nothing about the
// alignment of network reads and frame boundaries, ignores lines without a
// `data:` prefix (blank separators, keep-alive comments), skips frames whose
// payload is not valid JSON, and treats a stream that closes without the
// terminal sentinel as a protocol error.
package sse
