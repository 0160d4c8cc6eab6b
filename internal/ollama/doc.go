// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
//
// Only the surface needed for a streaming chat session is implemented:
// model listing, streamed generation and streamed chat.
//
// # Key Types
//
//   - Client: HTTP client for the Ollama API
//   - Decoder: newline-delimited JSON decoder yielding Increments
//   - ClientError: classified error carrying an ErrorType
//
// # Usage
//
// Stream a completion:
//
//	client := ollama.NewClient()
//	body, err := client.OpenGenerate(ctx, ollama.GenerateRequest{
//	    Model:  "gemma3:1b",
//	    Prompt: "Hello",
//	})
//	if err != nil {
//	    return err
//	}
//	defer body.Close()
//
//	dec := ollama.NewDecoderContext(ctx, body)
//	for {
//	    inc, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(inc.Token)
//	}
//
// # Errors
//
// Every error returned by this package is a *ClientError. A malformed line
// aborts the stream (ErrTypeMalformedChunk) and a body that ends before a
// done:true object is ErrTypeStreamTruncated.
package ollama
