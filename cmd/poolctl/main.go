// Command poolctl is the operator-facing companion to poolmanagerd: it
// edits the pool document offline, for use in deploy scripts and
// migrations where spinning up the full daemon is unnecessary.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poolkeeper/provider-pool-manager/internal/crypto"
	"github.com/poolkeeper/provider-pool-manager/internal/pool"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "import":
		err = runImport(os.Args[2:])
	case "cleanup":
		err = runCleanup(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: poolctl <import|cleanup|export> ...")
	fmt.Fprintln(os.Stderr, "  poolctl import <pool-file> <family> <credentials-dir>")
	fmt.Fprintln(os.Stderr, "  poolctl cleanup <pool-file> <max-disabled-age>   (e.g. 720h)")
	fmt.Fprintln(os.Stderr, "  poolctl export <pool-file> <out-file>            (requires ENCRYPTION_KEY)")
}

// runImport reads every *.json file in dir as a credential file (matching
// the claude-kiro-oauth on-disk layout for that family, or a raw
// credentials object for any other family) and merges each into the pool
// document as a new entry, assigning a fresh UUID.
func runImport(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("import requires <pool-file> <family> <credentials-dir>")
	}
	poolFile, family, dir := args[0], pool.Family(args[1]), args[2]

	doc, err := pool.LoadPoolFile(poolFile)
	if err != nil {
		return err
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read credentials dir: %w", err)
	}

	imported := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, f.Name()))
		if err != nil {
			return fmt.Errorf("read %s: %w", f.Name(), err)
		}

		var raw json.RawMessage = data
		if family == pool.FamilyClaudeKiroOAuth {
			var creds pool.KiroCredentials
			if err := json.Unmarshal(data, &creds); err != nil {
				return fmt.Errorf("parse %s as kiro credentials: %w", f.Name(), err)
			}
			creds = creds.WithDefaults()
			encoded, err := json.Marshal(creds)
			if err != nil {
				return err
			}
			raw = encoded
		}

		doc[family] = append(doc[family], &pool.Entry{
			UUID:        uuid.NewString(),
			Credentials: raw,
			IsHealthy:   true,
		})
		imported++
	}

	if err := pool.SavePoolFile(poolFile, doc); err != nil {
		return err
	}
	log.Printf("✅ 已导入 %d 个 %s 凭证到 %s", imported, family, poolFile)
	return nil
}

// runCleanup drops entries flagged isDisabled whose lastErrorTime is older
// than maxAge.
func runCleanup(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("cleanup requires <pool-file> <max-disabled-age>")
	}
	poolFile := args[0]
	maxAge, err := time.ParseDuration(args[1])
	if err != nil {
		return fmt.Errorf("parse max age: %w", err)
	}

	doc, err := pool.LoadPoolFile(poolFile)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	dropped := 0
	for family, entries := range doc {
		kept := entries[:0]
		for _, e := range entries {
			if e.IsDisabled && olderThan(e.LastErrorTime, cutoff) {
				dropped++
				continue
			}
			kept = append(kept, e)
		}
		doc[family] = kept
	}

	if err := pool.SavePoolFile(poolFile, doc); err != nil {
		return err
	}
	log.Printf("✅ 已清理 %d 个长期禁用的 entry", dropped)
	return nil
}

func olderThan(timestamp string, cutoff time.Time) bool {
	if timestamp == "" {
		return true
	}
	t, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return true
	}
	return t.Before(cutoff)
}

// runExport writes an encrypted backup of every entry's credentials,
// keyed by ENCRYPTION_KEY, so a pool document can be archived off-host
// without leaving plaintext API keys at rest.
func runExport(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("export requires <pool-file> <out-file>")
	}
	poolFile, outFile := args[0], args[1]

	key, err := crypto.LoadEncryptionKey()
	if err != nil {
		return fmt.Errorf("load encryption key: %w", err)
	}

	doc, err := pool.LoadPoolFile(poolFile)
	if err != nil {
		return err
	}

	type encryptedEntry struct {
		UUID                 string `json:"uuid"`
		EncryptedCredentials string `json:"encryptedCredentials"`
	}
	out := make(map[string][]encryptedEntry, len(doc))
	for family, entries := range doc {
		for _, e := range entries {
			ciphertext, err := crypto.EncryptString(string(e.Credentials), key)
			if err != nil {
				return fmt.Errorf("encrypt entry %s: %w", e.UUID, err)
			}
			out[string(family)] = append(out[string(family)], encryptedEntry{
				UUID:                 e.UUID,
				EncryptedCredentials: ciphertext,
			})
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(outFile, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", outFile, err)
	}
	log.Printf("✅ 已导出加密备份到 %s", outFile)
	return nil
}
