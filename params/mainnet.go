package params

import "math/big"

// hardforkBlocks is the mainnet block height at which each hardfork
// activates, mirroring the teacher's params/config.go MainnetChainConfig
// table (the teacher pack did not retrieve that exact file, but the
// numbers below are the well-known mainnet activation heights it encodes).
var hardforkBlocks = map[Hardfork]*big.Int{
	Chainstart:       big.NewInt(0),
	Homestead:        big.NewInt(1_150_000),
	DAO:              big.NewInt(1_920_000),
	TangerineWhistle: big.NewInt(2_463_000),
	SpuriousDragon:   big.NewInt(2_675_000),
	Byzantium:        big.NewInt(4_370_000),
	Constantinople:   big.NewInt(7_280_000),
	Petersburg:       big.NewInt(7_280_000),
	Istanbul:         big.NewInt(9_069_000),
	MuirGlacier:      big.NewInt(9_200_000),
	Berlin:           big.NewInt(12_244_000),
	London:           big.NewInt(12_965_000),
	ArrowGlacier:     big.NewInt(13_773_000),
	GrayGlacier:      big.NewInt(15_050_000),
}

// Mainnet is a ready-to-use PoW ChainParams implementing the ethash
// difficulty/gas-limit constants from the teacher's
// params/protocol_params.go, unchanged across hardforks on real mainnet.
var Mainnet ChainParams = &tableParams{
	consensusType:      PoW,
	consensusAlgorithm: "ethash",
	hardforkBlocks:     hardforkBlocks,
	params: map[string]map[string]*big.Int{
		"pow": {
			"difficultyBoundDivisor": big.NewInt(2048),
			"minimumDifficulty":      big.NewInt(131072),
			"durationLimit":          big.NewInt(13),
		},
		"gasConfig": {
			"gasLimitBoundDivisor": big.NewInt(1024),
			"minGasLimit":          big.NewInt(5000),
		},
		"vm": {
			"maxExtraDataSize": big.NewInt(32),
		},
	},
	genesis: GenesisParams{
		GasLimit:   big.NewInt(5000),
		Timestamp:  big.NewInt(0),
		Difficulty: big.NewInt(17_179_869_184),
		ExtraData:  nil,
		Nonce:      [8]byte{0, 0, 0, 0, 0, 0, 0, 0x42},
	},
	eips: map[uint]bool{},
}

// NewCliqueParams builds a ChainParams for a proof-of-authority clique
// chain with the given period/epoch, reusing the same gas-limit table as
// Mainnet (clique chains still obey the generic EIP-1 gas-limit bounds).
func NewCliqueParams(period, epoch uint64, genesis GenesisParams) ChainParams {
	return &tableParams{
		consensusType:      PoA,
		consensusAlgorithm: "clique",
		cliqueConfig:       CliqueConfig{Period: period, Epoch: epoch},
		hardforkBlocks:     map[Hardfork]*big.Int{Chainstart: big.NewInt(0)},
		params: map[string]map[string]*big.Int{
			"gasConfig": {
				"gasLimitBoundDivisor": big.NewInt(1024),
				"minGasLimit":          big.NewInt(5000),
			},
		},
		genesis: genesis,
		eips:    map[uint]bool{2718: true, 2930: true},
	}
}

// tableParams is a plain keyed-lookup ChainParams, the concrete shape the
// teacher's own params.ChainConfig takes (a struct of named fields plus a
// handful of IsXxx predicate methods) generalized to spec.md §6's
// (section, name, hardfork) lookup contract.
type tableParams struct {
	consensusType      ConsensusType
	consensusAlgorithm string
	cliqueConfig       CliqueConfig
	hardforkBlocks     map[Hardfork]*big.Int
	params             map[string]map[string]*big.Int
	genesis            GenesisParams
	eips               map[uint]bool
}

func (p *tableParams) ParamByHardfork(section, name string, hf Hardfork) *big.Int {
	v, ok := p.params[section][name]
	if !ok {
		panic("params: unknown parameter " + section + "." + name)
	}
	return v
}

func (p *tableParams) ConsensusType() ConsensusType   { return p.consensusType }
func (p *tableParams) ConsensusAlgorithm() string     { return p.consensusAlgorithm }
func (p *tableParams) ConsensusConfig() CliqueConfig  { return p.cliqueConfig }
func (p *tableParams) Genesis() GenesisParams         { return p.genesis }
func (p *tableParams) EIPs() map[uint]bool            { return p.eips }

func (p *tableParams) HardforkGte(a, b Hardfork) bool { return a.Gte(b) }

func (p *tableParams) HardforkBlock(name Hardfork) *big.Int {
	if b, ok := p.hardforkBlocks[name]; ok {
		return b
	}
	return nil
}

func (p *tableParams) IsHardforkActive(name Hardfork) bool {
	_, ok := p.hardforkBlocks[name]
	return ok
}

// ActiveHardforkAt returns the newest hardfork whose activation block is
// at or below number.
func (p *tableParams) ActiveHardforkAt(number *big.Int) Hardfork {
	best := Chainstart
	for _, h := range order {
		block, ok := p.hardforkBlocks[h]
		if !ok {
			continue
		}
		if block.Cmp(number) <= 0 && h.Rank() > best.Rank() {
			best = h
		}
	}
	return best
}
