package claims

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrolens/claimverify/internal/coords"
	"github.com/agrolens/claimverify/internal/damage"
	"github.com/agrolens/claimverify/internal/exif"
	"github.com/agrolens/claimverify/internal/fraud"
	"github.com/agrolens/claimverify/internal/fusion"
	"github.com/agrolens/claimverify/internal/geo"
	"github.com/agrolens/claimverify/internal/geofence"
	"github.com/agrolens/claimverify/internal/vision"
	"github.com/agrolens/claimverify/internal/weather"
	"github.com/agrolens/claimverify/pkg/common"
	"github.com/agrolens/claimverify/pkg/config"
	"github.com/agrolens/claimverify/pkg/logger"
)

// WeatherFetcher is satisfied by *weather.Service.
type WeatherFetcher interface {
	Fetch(ctx context.Context, loc geo.Point, dateISO string) (weather.Observation, error)
}

// Service runs the verification pipeline. Claims share no mutable state,
// so one Service may verify many claims concurrently.
type Service struct {
	cfg            config.VerificationConfig
	weatherTimeout time.Duration
	extractor      exif.Extractor
	analyzer       vision.Analyzer
	weatherSvc     WeatherFetcher
	engine         *geofence.Engine
}

// NewService wires the pipeline from configuration and collaborators.
func NewService(cfg *config.Config, extractor exif.Extractor, analyzer vision.Analyzer, weatherSvc WeatherFetcher) *Service {
	return &Service{
		cfg:            cfg.Verification,
		weatherTimeout: cfg.Weather.RequestTimeout,
		extractor:      extractor,
		analyzer:       analyzer,
		weatherSvc:     weatherSvc,
		engine:         geofence.NewEngine(geo.NewStrategy(cfg.Verification.FullPrecisionGeometry)),
	}
}

// Verify runs the whole pipeline for one claim: per-image analyses in
// parallel, one weather fetch, damage aggregation, fraud detection, and
// finally fusion once every evidence stream has resolved.
func (s *Service) Verify(ctx context.Context, req Request) (*VerificationResult, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	store := geofence.NewStore(req.BoundaryPath)
	boundary, err := store.Load(req.Images[0].Claimed, req.ParcelID, s.cfg.BoundaryHalfSizeDeg)
	if err != nil {
		return nil, err
	}

	type imageOutcome struct {
		report ImageReport
		meta   exif.Metadata
	}

	outcomes := make([]imageOutcome, len(req.Images))

	var wg sync.WaitGroup
	for i, img := range req.Images {
		wg.Add(1)
		go func(i int, img ImageEvidence) {
			defer wg.Done()

			meta, metaErr := s.extractor.Extract(img.Path)
			if metaErr != nil {
				logger.Debug("image metadata unavailable",
					zap.Int("image_index", i+1),
					zap.Error(metaErr),
				)
			}
			coordResult := coords.Analyze(meta.Point, img.Claimed, s.cfg.CoordinateToleranceM)
			point, source := s.selectPoint(meta, coordResult, img.Claimed)

			fence, err := s.engine.Evaluate(boundary, point)
			if err != nil {
				logger.Warn("geofence evaluation failed for image",
					zap.Int("image_index", i+1),
					zap.Error(err),
				)
			}

			outcomes[i] = imageOutcome{
				meta: meta,
				report: ImageReport{
					Index:            i + 1,
					Path:             img.Path,
					ExifAvailable:    meta.HasGPS(),
					MetadataFields:   meta.FieldCount,
					Coordinates:      coordResult,
					Geofence:         fence,
					GeofencedAgainst: source,
				},
			}
		}(i, img)
	}

	// Weather runs once per claim, alongside the image analyses.
	var obs weather.Observation
	wg.Add(1)
	go func() {
		defer wg.Done()
		wctx, cancel := context.WithTimeout(ctx, s.weatherTimeout)
		defer cancel()

		var err error
		obs, err = s.weatherSvc.Fetch(wctx, req.Images[0].Claimed, req.ClaimDate)
		if err != nil {
			logger.Warn("weather fetch failed, claim degrades to unverifiable",
				zap.String("claim_id", req.ClaimID),
				zap.Error(err),
			)
		}
	}()

	damageEst := damage.Aggregate(s.analyzer, req.DamageImages, req.FarmerDamagePct)

	// Barrier: fusion must never see partial evidence.
	wg.Wait()

	reports := make([]ImageReport, len(outcomes))
	metadata := make([]exif.Metadata, len(outcomes))
	coordResults := make([]coords.Result, len(outcomes))
	inside := 0
	for i, o := range outcomes {
		reports[i] = o.report
		metadata[i] = o.meta
		coordResults[i] = o.report.Coordinates
		if o.report.Geofence.Inside {
			inside++
		}
	}

	assessment := weather.AssessConsistency(obs, req.ClaimCause)

	fraudReport := fraud.Detect(fraud.Evidence{
		Metadata:           metadata,
		CoordResults:       coordResults,
		PriorClaimCount:    req.PriorClaimCount,
		ClaimedDamagePct:   req.FarmerDamagePct,
		CalculatedPct:      damageEst.AIPercent,
		AnalyzerConfidence: damageEst.Confidence,
	})

	outcome := fusion.Fuse(fusion.Inputs{
		ImagesInsideBoundary:  inside,
		ImagesTotal:           len(reports),
		DamageConfidence:      damageEst.Confidence,
		FraudScore:            fraudReport.Score,
		InvestigationRequired: fraudReport.InvestigationRequired,
		WeatherFetchSucceeded: obs.Success,
		FinalDamagePercent:    damageEst.FinalPercent,
		SumInsured:            req.SumInsured,
	})

	result := &VerificationResult{
		ClaimID:           req.ClaimID,
		ParcelID:          req.ParcelID,
		Images:            reports,
		Weather:           obs,
		WeatherAssessment: assessment,
		Damage:            damageEst,
		Fraud:             fraudReport,
		SubScores:         outcome.SubScores,
		OverallConfidence: outcome.OverallConfidence,
		Decision:          outcome.Decision,
		RiskLevel:         outcome.RiskLevel,
		ManualReview:      outcome.ManualReview,
		PayoutAmount:      outcome.PayoutAmount,
		GeneratedAt:       time.Now().UTC(),
	}

	logger.Info("claim verified",
		zap.String("claim_id", result.ClaimID),
		zap.String("decision", string(result.Decision)),
		zap.Float64("overall_confidence", result.OverallConfidence),
		zap.Float64("payout", result.PayoutAmount),
	)

	return result, nil
}

// selectPoint picks which coordinate each image is geofenced against.
// A verified EXIF fix wins; otherwise the claimed coordinate is used
// unless the configuration distrusts claimed coordinates entirely, in
// which case any available EXIF fix is preferred.
func (s *Service) selectPoint(meta exif.Metadata, cr coords.Result, claimed geo.Point) (geo.Point, string) {
	if meta.Point != nil && (cr.WithinTolerance || !s.cfg.TrustClaimedCoords) {
		return *meta.Point, "exif"
	}
	return claimed, "claimed"
}

func (s *Service) validate(req *Request) *common.AppError {
	if len(req.Images) == 0 {
		return common.NewInputValidationError("at least one authentication image is required")
	}
	for _, img := range req.Images {
		if img.Path == "" {
			return common.NewInputValidationError("image path must not be empty")
		}
		if err := img.Claimed.Validate(); err != nil {
			if appErr, ok := err.(*common.AppError); ok {
				return appErr
			}
			return common.NewInputValidationError(err.Error())
		}
	}
	if !isFinite(req.FarmerDamagePct) || req.FarmerDamagePct < 0 || req.FarmerDamagePct > 100 {
		return common.NewInputValidationError("farmer damage percent must be a finite number in [0, 100]")
	}
	if !isFinite(req.SumInsured) || req.SumInsured < 0 {
		return common.NewInputValidationError("sum insured must be a finite non-negative number")
	}
	if req.BoundaryPath == "" {
		return common.NewInputValidationError("boundary file path is required")
	}

	if req.ClaimID == "" {
		req.ClaimID = uuid.New().String()
	}
	if req.ParcelID == "" {
		req.ParcelID = "AUTO_GENERATED"
	}
	if req.ClaimDate == "" {
		req.ClaimDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.ClaimDate); err != nil {
		return common.NewInputValidationError("claim date must be an ISO date (YYYY-MM-DD)", err.Error())
	}

	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
