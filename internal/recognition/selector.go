package recognition

import (
	"fmt"
	"iter"

	"lpservice/internal/apperr"
)

// Select reduces detected boxes to one reading.
//
// With no boxes the whole frame is read once and a readable result is
// reported with FullFrameConfidence. Otherwise every box is cropped and read;
// unreadable crops are skipped whatever their box confidence, and the
// readable candidate with the highest box confidence wins, the first one in
// detection order on ties. The reported confidence is always the detector's.
func Select[F Frame[F]](boxes iter.Seq[BoundingBox], frame F, reader TextReader[F]) Result {
	var (
		seen  int
		best  PlateCandidate
		found bool
	)

	for box := range boxes {
		seen++

		text, err := readRegion(frame, box, reader)
		if err != nil {
			return Result{Err: apperr.From(err)}
		}
		if !text.Readable() {
			continue
		}
		if !found || box.Confidence > best.Box.Confidence {
			best = PlateCandidate{Box: box, Text: text}
			found = true
		}
	}

	if seen == 0 {
		text, err := reader.ReadText(frame)
		if err != nil {
			return Result{Err: apperr.From(err)}
		}
		if !text.Readable() {
			return Failure(apperr.NoPlateDetected, "no license plate detected in image")
		}
		return Success(text, FullFrameConfidence)
	}

	if !found {
		return Failure(apperr.TextUnreadable, fmt.Sprintf("could not read text from %d detected plate(s)", seen))
	}
	return Success(best.Text, best.Box.Confidence)
}

// readRegion crops box out of frame and reads it. A box that cannot be cropped
// counts as unreadable.
func readRegion[F Frame[F]](frame F, box BoundingBox, reader TextReader[F]) (PlateText, error) {
	region, err := frame.Crop(box)
	if err != nil {
		return Unreadable, nil
	}
	defer region.Close()

	return reader.ReadText(region)
}
