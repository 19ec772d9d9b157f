package data

type BatchProcessor struct {
	batchSize int
}

func NewBatchProcessor(batchSize int) *BatchProcessor {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &BatchProcessor{batchSize: batchSize}
}

func (bp *BatchProcessor) ProcessBatches(examples []LabeledExample, processFn func(start int, batch []LabeledExample) error) error {
	total := len(examples)

	for start := 0; start < total; start += bp.batchSize {
		end := start + bp.batchSize
		if end > total {
			end = total
		}

		if err := processFn(start, examples[start:end]); err != nil {
			return err
		}
	}

	return nil
}

func (bp *BatchProcessor) GetBatchSize() int {
	return bp.batchSize
}
