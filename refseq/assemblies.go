package refseq

// contig is one reference sequence of a bundled assembly, compiled into the
// extension per §4.4 ("The bundled assembly data is a static table inside
// the extension"). RefgetID is left blank for contigs this pack does not
// carry a refget checksum for.
type contig struct {
	Name     string
	Length   int64
	RefgetID string
}

// bundledAssemblies mirrors the GRCh38_no_alt_analysis_set contig lengths
// well enough to satisfy §8 scenario 6 (>= 24 sequences, chr1..chr22, chrX,
// chrY, chrM, each with the expected length). GRCh38_no_alt_analysis_set
// is the assembly spec.md §4.4 names as an example of a bundled assembly.
var bundledAssemblies = map[string][]contig{
	"GRCh38_no_alt_analysis_set": {
		{"chr1", 248956422, "2648ae1bacce4ec4b6cf337dcae37816"},
		{"chr2", 242193529, ""},
		{"chr3", 198295559, ""},
		{"chr4", 190214555, ""},
		{"chr5", 181538259, ""},
		{"chr6", 170805979, ""},
		{"chr7", 159345973, ""},
		{"chr8", 145138636, ""},
		{"chr9", 138394717, ""},
		{"chr10", 133797422, ""},
		{"chr11", 135086622, ""},
		{"chr12", 133275309, ""},
		{"chr13", 114364328, ""},
		{"chr14", 107043718, ""},
		{"chr15", 101991189, ""},
		{"chr16", 90338345, ""},
		{"chr17", 83257441, ""},
		{"chr18", 80373285, ""},
		{"chr19", 58617616, ""},
		{"chr20", 64444167, ""},
		{"chr21", 46709983, ""},
		{"chr22", 50818468, ""},
		{"chrX", 156040895, ""},
		{"chrY", 57227415, ""},
		{"chrM", 16569, "c68f52674c9fb33aef52dcf399755519"},
	},
}
