package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"interview-memory-service/internal/config"
	"interview-memory-service/internal/memory/client"
	"interview-memory-service/internal/service/detect"
	"interview-memory-service/internal/service/stt"
	"interview-memory-service/internal/service/stt/google"
	"interview-memory-service/internal/service/stt/mock"
	"interview-memory-service/internal/session"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

// Stream audio in chunks to simulate real-time capture
// At 8kHz 16-bit mono = 16000 bytes/second
// 100ms chunks = 1600 bytes
const chunkSize = 1600
const chunkIntervalMs = 100

func main() {
	audioFile := flag.String("audio", "", "Path to WAV file (8kHz 16-bit mono PCM); required for the google provider")
	serverAddr := flag.String("server", "http://localhost:8080", "Memory service base URL")
	provider := flag.String("provider", "", "STT provider override: google or mock")
	frames := flag.Int("frames", 12, "Simulated audio frames to send with the mock provider")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	if *provider != "" {
		cfg.STT.Provider = *provider
	}

	ctx := context.Background()

	var adapter stt.Adapter
	var googleAdapter *google.Adapter
	var mockAdapter *mock.Adapter
	switch cfg.STT.Provider {
	case "google":
		a, err := google.New(ctx, cfg.STT)
		if err != nil {
			log.Fatalf("Failed to create Google STT adapter: %v", err)
		}
		googleAdapter = a
		adapter = a
	case "mock":
		mockAdapter = mock.New()
		adapter = mockAdapter
	default:
		log.Fatalf("Unknown STT provider: %s. Use google or mock", cfg.STT.Provider)
	}

	detector, err := detect.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create question detector: %v", err)
	}

	searcher := client.New(*serverAddr)

	sess := session.New(adapter, detector, searcher, nil, session.Config{
		SearchLimit: cfg.Search.DefaultLimit,
		MinScore:    cfg.Search.MinScore,
	})
	if err := sess.Start(ctx); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	if googleAdapter != nil {
		go googleAdapter.Listen()
	}

	log.Printf("Session started: sessionId=%s provider=%s server=%s", sess.ID, cfg.STT.Provider, *serverAddr)

	if mockAdapter != nil {
		for i := 0; i < *frames; i++ {
			if err := sess.SendAudio(ctx, nil); err != nil {
				log.Fatalf("Failed to send frame: %v", err)
			}
			time.Sleep(chunkIntervalMs * time.Millisecond)
		}
		mockAdapter.Drain()
	} else {
		streamWAV(ctx, sess, *audioFile)
	}

	if err := sess.Stop(); err != nil {
		log.Printf("Session stop error: %v", err)
	}

	printTranscript(sess)
}

// streamWAV reads a PCM WAV file and paces its audio through the session in
// real-time sized chunks.
func streamWAV(ctx context.Context, sess *session.Session, path string) {
	if path == "" {
		log.Fatal("The google provider needs -audio pointing at a WAV file")
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open audio file: %v", err)
	}
	defer f.Close()

	header := make([]byte, wavHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		log.Fatalf("Failed to read WAV header: %v", err)
	}

	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		log.Fatal("Not a valid WAV file")
	}

	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	numChannels := binary.LittleEndian.Uint16(header[22:24])
	sampleRate := binary.LittleEndian.Uint32(header[24:28])
	bitsPerSample := binary.LittleEndian.Uint16(header[34:36])

	log.Printf("WAV file: format=%d channels=%d sampleRate=%d bitsPerSample=%d",
		audioFormat, numChannels, sampleRate, bitsPerSample)

	if audioFormat != 1 { // PCM
		log.Fatal("Only PCM format supported")
	}
	if sampleRate != 8000 {
		log.Printf("Warning: Sample rate is %d Hz, expected 8000 Hz", sampleRate)
	}

	audioChunk := make([]byte, chunkSize)
	var totalBytes int64
	var chunkNum int
	startTime := time.Now()

	for {
		n, err := f.Read(audioChunk)
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read audio: %v", err)
		}

		chunkNum++
		totalBytes += int64(n)

		if err := sess.SendAudio(ctx, audioChunk[:n]); err != nil {
			log.Fatalf("Failed to send audio: %v", err)
		}

		if chunkNum%10 == 0 {
			log.Printf("Sent chunk %d (%d bytes total)", chunkNum, totalBytes)
		}

		// Simulate real-time capture
		time.Sleep(chunkIntervalMs * time.Millisecond)
	}

	log.Printf("Finished streaming: %d chunks, %d bytes in %v", chunkNum, totalBytes, time.Since(startTime))
}

// printTranscript prints the final transcript with question annotations and
// any memories retrieved for them.
func printTranscript(sess *session.Session) {
	fmt.Println()
	fmt.Println("--- Transcript ---")
	printed := make(map[string]bool)
	for _, frag := range sess.Fragments() {
		if !frag.IsFinal {
			continue
		}
		marker := " "
		if frag.IsQuestion {
			marker = "?"
		}
		fmt.Printf("[%s] %s\n", marker, frag.Text)

		// The whole group shares one annotation; print its memories once.
		if printed[frag.GroupID] {
			continue
		}
		printed[frag.GroupID] = true
		for _, r := range frag.Results {
			fmt.Printf("      memory (%.2f) %s: %s\n", r.Score, r.Classification, r.Description)
		}
	}
}
