package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agrolens/claimverify/internal/claims"
	"github.com/agrolens/claimverify/internal/exif"
	"github.com/agrolens/claimverify/internal/geo"
	"github.com/agrolens/claimverify/internal/vision"
	"github.com/agrolens/claimverify/internal/weather"
	"github.com/agrolens/claimverify/pkg/common"
	"github.com/agrolens/claimverify/pkg/config"
	"github.com/agrolens/claimverify/pkg/logger"
)

const usage = `verify <img1> <lat1> <lon1> [<img2> <lat2> <lon2> ...] \
    <damage_img> <farmer_damage_pct> <sum_insured> <geojson_path> <parcel_id> [trust_claimed]`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "claimverify",
		Short:         "Agricultural insurance claim verification pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newVerifyCmd())
	return root
}

func newVerifyCmd() *cobra.Command {
	var claimCause string
	var claimDate string
	var claimID string
	var priorClaims int

	cmd := &cobra.Command{
		Use:   usage,
		Short: "Verify one claim and print the result document as JSON",
		Args:  cobra.MinimumNArgs(8),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), args, claimID, claimCause, claimDate, priorClaims)
		},
	}

	cmd.Flags().StringVar(&claimID, "claim-id", "", "claim identifier (generated when empty)")
	cmd.Flags().StringVar(&claimCause, "cause", "", "claimed damage cause, free text")
	cmd.Flags().StringVar(&claimDate, "date", "", "claim date as YYYY-MM-DD (defaults to today)")
	cmd.Flags().IntVar(&priorClaims, "prior-claims", 0, "number of prior claims on record")

	return cmd
}

func runVerify(ctx context.Context, args []string, claimID, claimCause, claimDate string, priorClaims int) (err error) {
	// A panic anywhere in the pipeline still produces a structured error
	// document instead of a stack trace on stdout.
	defer func() {
		if r := recover(); r != nil {
			err = emitError(common.NewInternalError("claim processing panicked", fmt.Sprintf("%v", r)))
		}
	}()

	cfg, err := config.Load("claimverify")
	if err != nil {
		return emitError(common.NewInternalError("failed to load configuration", err.Error()))
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		return emitError(common.NewInternalError("failed to initialize logger", err.Error()))
	}
	defer logger.Sync()

	req, appErr := parseArgs(args, &cfg.Verification)
	if appErr != nil {
		return emitError(appErr)
	}
	req.ClaimID = claimID
	req.ClaimCause = claimCause
	req.ClaimDate = claimDate
	req.PriorClaimCount = priorClaims

	service := claims.NewService(cfg,
		exif.NewFileExtractor(),
		vision.NewHeuristicAnalyzer(),
		weather.NewService(cfg.Weather),
	)

	result, err := service.Verify(ctx, *req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			return emitError(appErr)
		}
		return emitError(common.NewInternalError("claim verification failed", err.Error()))
	}

	doc, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return emitError(common.NewInternalError("failed to encode result", err.Error()))
	}
	fmt.Println(string(doc))

	return nil
}

// parseArgs decodes the positional layout: N image/lat/lon triples
// followed by damage image, farmer damage percent, sum insured, boundary
// path, parcel id, and an optional trust-claimed flag. The trailing
// block is 5 or 6 arguments, so args length mod 3 disambiguates.
func parseArgs(args []string, cfg *config.VerificationConfig) (*claims.Request, *common.AppError) {
	var tail int
	switch {
	case len(args) >= 8 && (len(args)-5)%3 == 0:
		tail = 5
	case len(args) >= 9 && (len(args)-6)%3 == 0:
		tail = 6
	default:
		return nil, common.NewInputValidationError("wrong number of arguments", usage)
	}

	nImages := (len(args) - tail) / 3
	images := make([]claims.ImageEvidence, 0, nImages)
	for i := 0; i < nImages; i++ {
		path := args[i*3]
		lat, err := parseCoord(args[i*3+1], "latitude")
		if err != nil {
			return nil, err
		}
		lon, err := parseCoord(args[i*3+2], "longitude")
		if err != nil {
			return nil, err
		}
		images = append(images, claims.ImageEvidence{
			Path:    path,
			Claimed: geo.Point{Lat: lat, Lon: lon},
		})
	}

	rest := args[nImages*3:]
	farmerPct, appErr := parseCoord(rest[1], "farmer damage percent")
	if appErr != nil {
		return nil, appErr
	}
	sumInsured, appErr := parseCoord(rest[2], "sum insured")
	if appErr != nil {
		return nil, appErr
	}

	if tail == 6 {
		trusted, err := strconv.ParseBool(normalizeBool(rest[5]))
		if err != nil {
			return nil, common.NewInputValidationError("trust_claimed must be a boolean", rest[5])
		}
		cfg.TrustClaimedCoords = trusted
	}

	return &claims.Request{
		Images:          images,
		DamageImages:    []string{rest[0]},
		FarmerDamagePct: farmerPct,
		SumInsured:      sumInsured,
		BoundaryPath:    rest[3],
		ParcelID:        rest[4],
	}, nil
}

func parseCoord(raw, name string) (float64, *common.AppError) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, common.NewInputValidationError(name+" is not a number", raw)
	}
	return v, nil
}

func normalizeBool(raw string) string {
	switch raw {
	case "yes", "YES", "Yes":
		return "true"
	case "no", "NO", "No":
		return "false"
	}
	return raw
}

// emitError prints the structured error to stderr and returns it so the
// process exits non-zero.
func emitError(appErr *common.AppError) error {
	fmt.Fprintln(os.Stderr, string(appErr.JSON()))
	return appErr
}
