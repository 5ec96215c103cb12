package postgres

// SQL for the key/value blob table created by the migrations package.

const (
	// queryGetBlob reads the current value for one key.
	queryGetBlob = `
		SELECT value
		FROM blobs
		WHERE key = $1
	`

	// querySetBlob replaces the value for one key, creating the row on first write.
	querySetBlob = `
		INSERT INTO blobs (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = EXCLUDED.updated_at
	`

	// queryBlobTableExists checks that migrations have run.
	queryBlobTableExists = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = 'blobs'
		)
	`
)
