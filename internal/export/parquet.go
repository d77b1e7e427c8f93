package export

import (
	"fmt"
	"time"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/vesselperf/vesselperf/internal/align"
	"github.com/vesselperf/vesselperf/internal/compute"
	"github.com/vesselperf/vesselperf/pkg/types"
)

// parquetRow is one cell of the long-format export.
type parquetRow struct {
	Row       int64   `parquet:"name=row, type=INT64"`
	Timestamp string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8"`
	ElapsedH  float64 `parquet:"name=elapsed_h, type=DOUBLE"`
	Series    string  `parquet:"name=series, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Unit      string  `parquet:"name=unit, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Value     float64 `parquet:"name=value, type=DOUBLE"`
	Defined   bool    `parquet:"name=defined, type=BOOLEAN"`
}

// WriteParquet writes t and d to a Parquet file at path.
func WriteParquet(path string, t *align.Table, d *compute.Derived) (int, error) {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return 0, fmt.Errorf("export: create %s: %w", path, err)
	}
	n, err := writeParquet(fw, t, d)
	if err != nil {
		_ = fw.Close()
		return n, fmt.Errorf("export: write %s: %w", path, err)
	}
	if err := fw.Close(); err != nil {
		return n, fmt.Errorf("export: close %s: %w", path, err)
	}
	return n, nil
}

// MarshalParquet returns the same table WriteParquet writes, in memory.
func MarshalParquet(t *align.Table, d *compute.Derived) ([]byte, error) {
	fw := buffer.NewBufferFile()
	if _, err := writeParquet(fw, t, d); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

// writeParquet streams every cell to fw and returns the row count.
func writeParquet(fw source.ParquetFile, t *align.Table, d *compute.Derived) (int, error) {
	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 4)
	if err != nil {
		return 0, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	var all []types.Series
	for _, id := range t.Sensors() {
		s, err := t.Series(id)
		if err != nil {
			_ = pw.WriteStop()
			return 0, err
		}
		all = append(all, s)
	}
	all = append(all, d.Series()...)

	elapsed := t.ElapsedHours()
	stamps := make([]string, t.Len())
	for i := range stamps {
		stamps[i] = t.Time(i).Format(time.RFC3339Nano)
	}

	n := 0
	for _, s := range all {
		for i, v := range s.Values {
			row := parquetRow{
				Row:       int64(i),
				Timestamp: stamps[i],
				ElapsedH:  elapsed[i],
				Series:    s.Name,
				Unit:      s.Unit,
				Value:     v,
				Defined:   !types.IsUndefined(v),
			}
			if err := pw.Write(row); err != nil {
				_ = pw.WriteStop()
				return n, err
			}
			n++
		}
	}
	if err := pw.WriteStop(); err != nil {
		return n, err
	}
	return n, nil
}
